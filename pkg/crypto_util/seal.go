package crypto_util

import (
	"encoding/base64"

	"golang.org/x/crypto/scrypt"
)

// 机器登录密码不落明文库。用部署口令派生对称密钥后 AES-GCM 加密，
// 密文以 base64 存储在 machines.login_password 列。

const (
	scryptN     = 32768
	scryptR     = 8
	scryptP     = 1
	scryptDKLen = 32
)

// 固定 Salt: 密钥只派生一次，随机性由 GCM 的 nonce 提供
var sealSalt = []byte("goldops-machine-seal-v1")

// DeriveSealKey 从口令派生 32 字节 AES 密钥
func DeriveSealKey(secret string) ([]byte, error) {
	return scrypt.Key([]byte(secret), sealSalt, scryptN, scryptR, scryptP, scryptDKLen)
}

// SealPassword 加密登录密码并编码为 base64
func SealPassword(key []byte, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	sealed, err := EncryptAESGCM(key, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenPassword 解码 base64 并解密登录密码
func OpenPassword(key []byte, sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	plaintext, err := DecryptAESGCM(key, raw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
