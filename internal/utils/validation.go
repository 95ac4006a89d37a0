package utils

import (
	"regexp"

	"github.com/google/uuid"
)

var (
	accountIdRegex   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9:_\-\.]{2,63}$`)
	assetSymbolRegex = regexp.MustCompile(`^[A-Z0-9]{2,12}$`)
)

// IsValidAccountId checks if the given string is a well-formed platform
// account identifier. It does not check that the account exists.
func IsValidAccountId(account string) bool {
	return accountIdRegex.MatchString(account)
}

// IsValidAssetSymbol checks if the given string is a well-formed asset symbol.
func IsValidAssetSymbol(asset string) bool {
	return assetSymbolRegex.MatchString(asset)
}

// IsValidSubjectId checks if the given string is a valid proposal or guarantee
// identifier. Identifiers are generated as UUIDs at creation time.
func IsValidSubjectId(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
