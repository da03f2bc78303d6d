package ldap

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
)

// GUIDHandler converts between Active Directory objectGUID bytes and
// canonical UUID strings. Active Directory stores GUIDs in a mixed-endian
// format that differs from standard UUID byte ordering.
type GUIDHandler struct{}

// NewGUIDHandler creates a new GUID handler instance.
func NewGUIDHandler() *GUIDHandler {
	return &GUIDHandler{}
}

// GUIDBytesLength is the fixed length of a binary GUID.
const GUIDBytesLength = 16

// IsValidGUID checks if a string parses as a GUID.
func (g *GUIDHandler) IsValidGUID(guidString string) bool {
	if guidString == "" {
		return false
	}
	_, err := uuid.Parse(guidString)
	return err == nil
}

// NormalizeGUID converts a GUID string to canonical lowercase hyphenated form.
func (g *GUIDHandler) NormalizeGUID(guidString string) (string, error) {
	guidString = strings.TrimSpace(guidString)
	if guidString == "" {
		return "", fmt.Errorf("GUID string cannot be empty")
	}

	parsed, err := uuid.Parse(guidString)
	if err != nil {
		return "", fmt.Errorf("invalid GUID format %q: %w", guidString, err)
	}

	return parsed.String(), nil
}

// GUIDBytesToString converts Active Directory GUID bytes to canonical string form.
// Byte order:
// - Data1 (bytes 0-3): little-endian
// - Data2 (bytes 4-5): little-endian
// - Data3 (bytes 6-7): little-endian
// - Data4 (bytes 8-15): big-endian
func (g *GUIDHandler) GUIDBytesToString(guidBytes []byte) (string, error) {
	if len(guidBytes) != GUIDBytesLength {
		return "", fmt.Errorf("invalid GUID byte length: expected %d, got %d", GUIDBytesLength, len(guidBytes))
	}

	standardBytes := make([]byte, GUIDBytesLength)

	// Data1 (bytes 0-3): reverse byte order
	standardBytes[0] = guidBytes[3]
	standardBytes[1] = guidBytes[2]
	standardBytes[2] = guidBytes[1]
	standardBytes[3] = guidBytes[0]

	// Data2 (bytes 4-5): reverse byte order
	standardBytes[4] = guidBytes[5]
	standardBytes[5] = guidBytes[4]

	// Data3 (bytes 6-7): reverse byte order
	standardBytes[6] = guidBytes[7]
	standardBytes[7] = guidBytes[6]

	// Data4 (bytes 8-15): keep original order
	copy(standardBytes[8:], guidBytes[8:])

	parsed, err := uuid.FromBytes(standardBytes)
	if err != nil {
		return "", fmt.Errorf("failed to build UUID from bytes: %w", err)
	}

	return parsed.String(), nil
}

// StringToGUIDBytes converts a GUID string to Active Directory byte format.
func (g *GUIDHandler) StringToGUIDBytes(guidString string) ([]byte, error) {
	normalizedGUID, err := g.NormalizeGUID(guidString)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize GUID: %w", err)
	}

	guidHex := strings.ReplaceAll(normalizedGUID, "-", "")
	guidBytes, err := hex.DecodeString(guidHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode GUID hex: %w", err)
	}

	adBytes := make([]byte, GUIDBytesLength)

	adBytes[0] = guidBytes[3]
	adBytes[1] = guidBytes[2]
	adBytes[2] = guidBytes[1]
	adBytes[3] = guidBytes[0]

	adBytes[4] = guidBytes[5]
	adBytes[5] = guidBytes[4]

	adBytes[6] = guidBytes[7]
	adBytes[7] = guidBytes[6]

	copy(adBytes[8:], guidBytes[8:])

	return adBytes, nil
}

// ExtractGUID extracts a binary GUID attribute from an entry and returns it
// as a canonical string. The attribute name is configurable because some
// directories expose the identifier under a non-default name.
func (g *GUIDHandler) ExtractGUID(entry *ldap.Entry, attribute string) (string, error) {
	if entry == nil {
		return "", fmt.Errorf("directory entry cannot be nil")
	}
	if attribute == "" {
		attribute = "objectGUID"
	}

	guidAttr := entry.GetRawAttributeValue(attribute)
	if len(guidAttr) == 0 {
		return "", fmt.Errorf("attribute %s not found in entry %s", attribute, entry.DN)
	}

	if len(guidAttr) != GUIDBytesLength {
		return "", fmt.Errorf("invalid %s length: expected %d bytes, got %d", attribute, GUIDBytesLength, len(guidAttr))
	}

	return g.GUIDBytesToString(guidAttr)
}

// CompareGUIDs compares two GUID strings for equality, handling different formats.
func (g *GUIDHandler) CompareGUIDs(guid1, guid2 string) (bool, error) {
	normalized1, err := g.NormalizeGUID(guid1)
	if err != nil {
		return false, fmt.Errorf("failed to normalize first GUID: %w", err)
	}

	normalized2, err := g.NormalizeGUID(guid2)
	if err != nil {
		return false, fmt.Errorf("failed to normalize second GUID: %w", err)
	}

	return normalized1 == normalized2, nil
}
