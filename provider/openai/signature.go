package openai

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Prism-Shadow/AgentHub/provider"
)

// The responses API identifies reasoning state by an item id plus an
// encrypted payload. Both travel inside the canonical signature string as a
// small JSON token so thinking items round-trip losslessly across turns.

var signatureJSON = []byte(`{}`)

func encodeSignature(id, encryptedContent string) (string, error) {
	token, err := sjson.SetBytes(signatureJSON, "id", id)
	if err != nil {
		return "", err
	}
	token, err = sjson.SetBytes(token, "encrypted_content", encryptedContent)
	if err != nil {
		return "", err
	}
	return string(token), nil
}

func decodeSignature(signature string) (id, encryptedContent string, err error) {
	if !gjson.Valid(signature) {
		return "", "", provider.Malformedf("thinking signature is not a reasoning token: %s", signature)
	}
	parsed := gjson.Parse(signature)
	idv := parsed.Get("id")
	ecv := parsed.Get("encrypted_content")
	if !idv.Exists() || !ecv.Exists() {
		return "", "", provider.Malformedf("thinking signature is missing id or encrypted_content")
	}
	return idv.String(), ecv.String(), nil
}
