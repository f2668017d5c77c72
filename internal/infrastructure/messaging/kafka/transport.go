package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/donovanp007/medscribe/pkg/errors"
)

// AuthConfig carries the optional SASL and TLS settings shared by the
// producer and consumer.  A zero value means plaintext.
type AuthConfig struct {
	SASLMechanism string // "", "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string
	TLSEnabled    bool
	TLSCertPath   string
}

func (a AuthConfig) validate() error {
	if a.SASLMechanism != "" {
		switch a.SASLMechanism {
		case "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512":
		default:
			return errors.New(errors.ErrCodeValidation, "unsupported SASL mechanism")
		}
		if a.SASLUsername == "" || a.SASLPassword == "" {
			return errors.New(errors.ErrCodeValidation, "SASL credentials required")
		}
	}
	return nil
}

func (a AuthConfig) saslMechanism() (sasl.Mechanism, error) {
	switch a.SASLMechanism {
	case "":
		return nil, nil
	case "PLAIN":
		return plain.Mechanism{Username: a.SASLUsername, Password: a.SASLPassword}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, a.SASLUsername, a.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, a.SASLUsername, a.SASLPassword)
	default:
		return nil, errors.New(errors.ErrCodeValidation, "unsupported SASL mechanism")
	}
}

func (a AuthConfig) tlsConfig() *tls.Config {
	if !a.TLSEnabled {
		return nil
	}
	cfg := &tls.Config{}
	if a.TLSCertPath != "" {
		if pem, err := os.ReadFile(a.TLSCertPath); err == nil {
			pool := x509.NewCertPool()
			pool.AppendCertsFromPEM(pem)
			cfg.RootCAs = pool
		}
	}
	return cfg
}
