package bot

import (
	"github.com/keepmind9/webwatch/pkg/constants"
)

// maskSecret masks sensitive information for logging
func maskSecret(s string) string {
	if len(s) <= constants.MinSecretLengthForMasking {
		return "***"
	}
	return s[:constants.SecretMaskPrefixLength] + "***" + s[len(s)-constants.SecretMaskSuffixLength:]
}

// maskAppID masks sensitive app/client ID information for logging
func maskAppID(appID string) string {
	if len(appID) <= constants.MinAppIDLengthForMasking {
		return "***"
	}
	return appID[:constants.AppIDMaskPrefixLength] + "***" + appID[len(appID)-constants.AppIDMaskSuffixLength:]
}
