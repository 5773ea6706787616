package acauth

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// ChallengeImage renders uri as a PNG QR code and returns it as a base64
// data URI suitable for an <img src>. Pure function of the input.
func ChallengeImage(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
