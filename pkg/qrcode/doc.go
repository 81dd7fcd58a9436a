// Package qrcode renders provisioning URIs as QR code images for
// authenticator-app enrollment, either as raw PNG bytes or as a data-URI
// string embeddable in an <img> tag.
//
// The package is a thin wrapper around github.com/skip2/go-qrcode with input
// validation and sensible defaults. It knows nothing TOTP-specific: any
// content works, but its only caller in this module is the enrollment flow
// encoding otpauth:// URIs.
//
//	dataURI, err := qrcode.DataURI(otpauthURL, 256)
//	if err != nil {
//		// handle error
//	}
//	// <img src="{{.dataURI}}">
//
// Errors are package-level sentinels (ErrEmptyContent, ErrGenerationFailed)
// comparable with errors.Is.
package qrcode
