package connection

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorOptions controls HumanErrorMessage.
type ErrorOptions struct {
	// Query is appended to the message when ShowQuery is set.
	Query     string
	ShowQuery bool
}

// HumanErrorMessage turns a dial or query error into a message for the user.
func HumanErrorMessage(err error, opts ErrorOptions) string {
	if err == nil {
		return ""
	}
	msg := describe(err)
	if opts.ShowQuery && opts.Query != "" {
		msg += "\n\nSQL:\n" + opts.Query
	}
	return msg
}

func describe(err error) string {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "Connection refused.\nMake sure postgres is running"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("Can not resolve host '%s'", dnsErr.Name)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Net == "unix" && errors.Is(err, syscall.ENOENT) {
		path := ""
		if opErr.Addr != nil {
			path = opErr.Addr.String()
		}
		return fmt.Sprintf("Unix socket not found at %s", path)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Detail != "" {
			return pgErr.Message + "\n" + pgErr.Detail
		}
		return pgErr.Message
	}

	return err.Error()
}
