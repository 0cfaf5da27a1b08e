package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
)

// CertLoader serves a TLS certificate that is reloaded when its files change.
type CertLoader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu   sync.RWMutex
	cert *tls.Certificate
}

// NewCertLoader creates a CertLoader and loads the key pair once.
func NewCertLoader(certFile, keyFile string, logger *slog.Logger) (*CertLoader, error) {
	loader := &CertLoader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger,
	}
	if err := loader.Reload(); err != nil {
		return nil, err
	}
	return loader, nil
}

// GetCertificate is a callback for tls.Config.GetCertificate.
func (l *CertLoader) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cert, nil
}

// Reload reads the key pair from disk. On failure the previous certificate
// stays in use.
func (l *CertLoader) Reload() error {
	cert, err := tls.LoadX509KeyPair(l.certFile, l.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load key pair: %w", err)
	}

	l.mu.Lock()
	l.cert = &cert
	l.mu.Unlock()

	l.logger.Info("loaded tls certificate", "cert", l.certFile, "key", l.keyFile)
	return nil
}

// Watch reloads the certificate whenever the cert or key file changes,
// until ctx is done.
func (l *CertLoader) Watch(ctx context.Context) error {
	return watchFiles(ctx, l.logger, []string{l.certFile, l.keyFile}, watchDebounce, func() {
		if err := l.Reload(); err != nil {
			l.logger.Error("failed to reload certificate", "error", err)
		}
	})
}
