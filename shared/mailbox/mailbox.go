package mailbox

//go:generate go run go.uber.org/mock/mockgen -source=./mailbox.go -destination=./mocks/mailbox_mock.go -package=mocks

import (
	"context"
	"courtside/config"
	"courtside/infras/otel"
	"courtside/shared/constant"
	"courtside/shared/failure"
	"errors"
	"net"

	emailverifier "github.com/AfterShip/email-verifier"
	"github.com/rs/zerolog/log"
)

// Verifier checks that an address can plausibly receive mail before a guest account is created for it.
type Verifier interface {
	Verify(ctx context.Context, email string) error
}

type verifierImpl struct {
	verifier *emailverifier.Verifier
	lookup   func(email string) (*emailverifier.Result, error)
	lookupMX bool
	otel     otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Verifier {
	verifier := emailverifier.NewVerifier()

	return &verifierImpl{
		verifier: verifier,
		lookup:   verifier.Verify,
		lookupMX: cfg.Booking.VerifyMailbox,
		otel:     otel,
	}
}

func (v *verifierImpl) Verify(ctx context.Context, email string) (err error) {
	_, scope := v.otel.NewScope(ctx, constant.OtelMailboxScopeName, constant.OtelMailboxScopeName+".Verify")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !v.lookupMX {
		if syntax := v.verifier.ParseAddress(email); !syntax.Valid {
			return failure.BadRequestFromString("email address is invalid") //nolint:wrapcheck
		}

		return nil
	}

	result, lookupErr := v.lookup(email)
	if lookupErr != nil {
		var dnsErr *net.DNSError
		if errors.As(lookupErr, &dnsErr) && dnsErr.IsNotFound {
			return failure.BadRequestFromString("email domain does not exist") //nolint:wrapcheck
		}

		// Resolver outages are not the customer's fault, so the address is accepted.
		log.Warn().Err(lookupErr).Str("email", email).Msg("mailbox lookup unavailable, accepting address")

		return nil
	}

	if !result.Syntax.Valid {
		return failure.BadRequestFromString("email address is invalid") //nolint:wrapcheck
	}

	if !result.HasMxRecords {
		return failure.BadRequestFromString("email domain does not accept mail") //nolint:wrapcheck
	}

	if result.Disposable {
		return failure.BadRequestFromString("disposable email addresses are not accepted") //nolint:wrapcheck
	}

	return nil
}
