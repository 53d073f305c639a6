package godc

import "crypto/aes"

// aes.go implements the HW-OSTC3 firmware-update subsystem's keystream
// generator (spec §4.1.3, §9): AES-128-ECB is used not to encrypt a
// transport stream but as a block-at-a-time keystream XORed against a
// Hex-Intel-style firmware image. This sits entirely off the download
// hot path (spec §9 explicitly calls it "a separate subsystem").
//
// No example in the retrieval pack reaches for a third-party AES
// implementation (see DESIGN.md); crypto/aes is the correct, audited home
// for a single ECB block cipher.

// FirmwareKeystream produces n bytes of keystream by repeatedly
// AES-128-ECB-encrypting a running 16-byte counter block seeded from key,
// mirroring the HW-OSTC3 bootloader's obfuscation scheme.
func FirmwareKeystream(key [16]byte, n int) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, newErr("firmware.keystream", KindInvalidArgs, err)
	}

	out := make([]byte, 0, n)
	counter := key
	buf := make([]byte, 16)
	for len(out) < n {
		block.Encrypt(buf, counter[:])
		out = append(out, buf...)
		for i := 15; i >= 0; i-- {
			counter[i]++
			if counter[i] != 0 {
				break
			}
		}
	}
	return out[:n], nil
}

// DecryptFirmware XORs ciphertext against a keystream derived from key,
// producing the plaintext Hex-Intel firmware record stream. Encryption and
// decryption are the same operation since this is a keystream cipher.
func DecryptFirmware(key [16]byte, ciphertext []byte) ([]byte, error) {
	ks, err := FirmwareKeystream(key, len(ciphertext))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	for i := range ciphertext {
		out[i] = ciphertext[i] ^ ks[i]
	}
	return out, nil
}
