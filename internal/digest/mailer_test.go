// Package digest_test tests the SMTP transport against a stub server.
package digest_test

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prodscout/prodscout/internal/config"
	"github.com/prodscout/prodscout/internal/digest"
)

// plaintextSMTPServer speaks just enough SMTP to complete the EHLO
// exchange without ever advertising STARTTLS.
func plaintextSMTPServer(t *testing.T) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() }) //nolint:errcheck // test listener

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close() //nolint:errcheck // test connection

		fmt.Fprint(conn, "220 mail.test ESMTP\r\n")
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
				fmt.Fprint(conn, "250-mail.test\r\n250 AUTH PLAIN\r\n")
			case strings.HasPrefix(line, "QUIT"):
				fmt.Fprint(conn, "221 bye\r\n")
				return
			default:
				fmt.Fprint(conn, "502 command not implemented\r\n")
			}
		}
	}()

	addr, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return addr, p
}

func TestDeliverRefusesPlaintext(t *testing.T) {
	host, port := plaintextSMTPServer(t)

	m := digest.NewSMTPMailer(config.SMTP{
		Host:     host,
		Port:     port,
		User:     "ops@example.com",
		Password: "hunter2",
	}, "owner@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The server never offers STARTTLS; credentials must not travel in
	// the clear, so delivery has to fail.
	err := m.Deliver(ctx, "Product Research Digest - 2026-08-23", "body", nil)
	require.Error(t, err)
}
