package ldap

import (
	"fmt"

	"github.com/bwmarrin/go-objectsid"
	"github.com/go-ldap/ldap/v3"
)

// SIDHandler decodes binary Active Directory security identifiers.
// Directories that key users on objectSid rather than objectGUID expose the
// identifier as binary data that needs conversion to the S-1-5-21-... form.
type SIDHandler struct{}

// NewSIDHandler creates a new SID handler instance.
func NewSIDHandler() *SIDHandler {
	return &SIDHandler{}
}

// sidHeaderLength is the fixed prefix of a binary SID: revision byte,
// sub-authority count byte and a 48-bit identifier authority.
const sidHeaderLength = 8

// ConvertBinarySIDToString converts a binary SID to its string representation.
func (s *SIDHandler) ConvertBinarySIDToString(binarySID []byte) (string, error) {
	if len(binarySID) == 0 {
		return "", fmt.Errorf("binary SID cannot be empty")
	}
	if len(binarySID) < sidHeaderLength {
		return "", fmt.Errorf("binary SID truncated: %d bytes", len(binarySID))
	}

	// Each sub-authority is a 32-bit value after the header.
	subAuthorityCount := int(binarySID[1])
	if expected := sidHeaderLength + 4*subAuthorityCount; len(binarySID) < expected {
		return "", fmt.Errorf("binary SID truncated: %d bytes, expected %d for %d sub-authorities",
			len(binarySID), expected, subAuthorityCount)
	}

	sid := objectsid.Decode(binarySID)

	return sid.String(), nil
}

// ExtractSID extracts a binary SID attribute from an entry and returns it as
// a string. Falls back to a string-valued attribute when the raw form is not
// binary, which directory simulators commonly produce.
func (s *SIDHandler) ExtractSID(entry *ldap.Entry, attribute string) (string, error) {
	if entry == nil {
		return "", fmt.Errorf("directory entry cannot be nil")
	}
	if attribute == "" {
		attribute = "objectSid"
	}

	sidBytes := entry.GetRawAttributeValue(attribute)
	if len(sidBytes) == 0 {
		return "", fmt.Errorf("attribute %s not found in entry %s", attribute, entry.DN)
	}

	sidString, err := s.ConvertBinarySIDToString(sidBytes)
	if err == nil && s.ValidateSIDString(sidString) == nil {
		return sidString, nil
	}

	// Fallback to string SID value
	stringValue := entry.GetAttributeValue(attribute)
	if stringValue != "" && s.ValidateSIDString(stringValue) == nil {
		return stringValue, nil
	}

	if err != nil {
		return "", err
	}
	return "", fmt.Errorf("attribute %s in entry %s is not a valid SID", attribute, entry.DN)
}

// ValidateSIDString validates that a string is a properly formatted SID.
func (s *SIDHandler) ValidateSIDString(sidString string) error {
	if sidString == "" {
		return fmt.Errorf("SID string cannot be empty")
	}

	if len(sidString) < 5 || sidString[:2] != "S-" {
		return fmt.Errorf("invalid SID format: must start with 'S-'")
	}

	return nil
}
