package ws

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
)

// TLSConfigFromEnv загружает клиентскую TLS конфигурацию из переменных окружения
// WS_TLS_CA - дополнительный CA сертификат в base64 (PEM)
// WS_TLS_INSECURE - отключить проверку сертификата сервера
// Если ни одна переменная не задана, возвращается nil.
func TLSConfigFromEnv() (*tls.Config, error) {
	caB64 := os.Getenv("WS_TLS_CA")
	insecureRaw := os.Getenv("WS_TLS_INSECURE")

	if caB64 == "" && insecureRaw == "" {
		return nil, nil
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if insecureRaw != "" {
		insecure, err := strconv.ParseBool(insecureRaw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse WS_TLS_INSECURE: %w", err)
		}

		cfg.InsecureSkipVerify = insecure
	}

	if caB64 != "" {
		caPEM, err := base64.StdEncoding.DecodeString(caB64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WS_TLS_CA: %w", err)
		}

		rootCAs, err := x509.SystemCertPool()
		if err != nil || rootCAs == nil {
			rootCAs = x509.NewCertPool()
		}

		if !rootCAs.AppendCertsFromPEM(caPEM) {
			return nil, ErrInvalidCA
		}

		cfg.RootCAs = rootCAs
	}

	return cfg, nil
}
