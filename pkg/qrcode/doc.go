// Package qrcode renders provisioning URIs as PNG QR codes, either as raw bytes
// or as a data URI ready for an <img> tag.
//
// It wraps github.com/skip2/go-qrcode with input validation and defaults that
// authenticator apps scan reliably (256px, medium error recovery).
//
//	png, err := qrcode.Generate(uri)
//	dataURI, err := qrcode.GenerateDataURI(uri, qrcode.WithSize(320))
package qrcode
