package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"dogpark/internal/middleware"
	"dogpark/internal/models"
	"dogpark/internal/observability"
	"dogpark/internal/session"
	"dogpark/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
)

type procKind int

const (
	query procKind = iota
	mutation
)

func (k procKind) String() string {
	if k == mutation {
		return "mutation"
	}
	return "query"
}

type access int

const (
	public access = iota
	protected
)

// procedure is one entry of the RPC surface, addressed as <namespace>.<name>.
type procedure struct {
	name       string
	kind       procKind
	access     access
	middleware []fiber.Handler
	// fallback, when set, is returned instead of an UNAVAILABLE error.
	fallback any
	call     func(rc *rpcCall, raw []byte) (any, error)
}

// rpcCall carries the caller identity for one invocation.
type rpcCall struct {
	c      *fiber.Ctx
	s      *Server
	userID uint
	claims *session.Claims
}

func (rc *rpcCall) services() (*services, error) {
	return rc.s.services(rc.c.UserContext())
}

// def builds a procedure whose input is decoded into In and validated before
// run sees it.
func def[In any](name string, kind procKind, acc access, run func(rc *rpcCall, in In) (any, error)) *procedure {
	return &procedure{
		name:   name,
		kind:   kind,
		access: acc,
		call: func(rc *rpcCall, raw []byte) (any, error) {
			var in In
			if len(raw) > 0 && string(raw) != "null" {
				if err := json.Unmarshal(raw, &in); err != nil {
					return nil, models.NewValidationError("Invalid input")
				}
			}
			if err := validation.Struct(in); err != nil {
				return nil, err
			}
			return run(rc, in)
		},
	}
}

func (p *procedure) withFallback(v any) *procedure {
	p.fallback = v
	return p
}

func (p *procedure) use(h ...fiber.Handler) *procedure {
	p.middleware = append(p.middleware, h...)
	return p
}

func (s *Server) registerProcedures() map[string]*procedure {
	procs := make(map[string]*procedure)
	for _, group := range [][]*procedure{
		s.authProcedures(),
		s.userProcedures(),
		s.postProcedures(),
		s.commentProcedures(),
		s.likeProcedures(),
		s.tagProcedures(),
		s.searchProcedures(),
	} {
		for _, p := range group {
			if _, dup := procs[p.name]; dup {
				panic(fmt.Sprintf("procedure %q registered twice", p.name))
			}
			procs[p.name] = p
		}
	}
	return procs
}

// rpcHandler runs a procedure: identity, input binding and validation happen
// before any storage access.
func (s *Server) rpcHandler(p *procedure) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := &rpcCall{c: c, s: s}

		claims, err := s.sessions.Resolve(c)
		switch {
		case err == nil:
			rc.claims = claims
			rc.userID = claims.UserID
			c.Locals("userID", claims.UserID)
			c.SetUserContext(middleware.WithUserID(c.UserContext(), claims.UserID))
		case p.access == protected:
			return s.respondError(c, err)
		}

		ctx, span := observability.StartSpan(c.UserContext(), "rpc "+p.name,
			attribute.String("rpc.procedure", p.name),
			attribute.String("rpc.kind", p.kind.String()),
		)
		c.SetUserContext(ctx)

		result, err := p.call(rc, rpcInput(c))
		observability.EndSpan(span, err)
		if err != nil {
			if p.fallback != nil && models.ErrorCode(err) == models.CodeUnavailable {
				middleware.Logger.WarnContext(ctx, "serving fallback",
					slog.String("procedure", p.name))
				return c.JSON(p.fallback)
			}
			return s.respondError(c, err)
		}
		return c.JSON(result)
	}
}

// rpcInput returns the raw JSON input: the body for POST and the "input"
// query parameter for GET.
func rpcInput(c *fiber.Ctx) []byte {
	if c.Method() == fiber.MethodGet {
		return []byte(c.Query("input"))
	}
	return c.Body()
}

// unknownProcedure answers every /api/rpc path no route matched.
func (s *Server) unknownProcedure(c *fiber.Ctx) error {
	name := strings.Trim(c.Params("*"), "/")
	if _, ok := s.procedures[name]; ok {
		return models.RespondWithError(c, fiber.StatusMethodNotAllowed,
			&models.AppError{Code: models.CodeValidation, Message: "Method not allowed"})
	}
	return models.RespondWithError(c, fiber.StatusNotFound,
		&models.AppError{Code: models.CodeNotFound, Message: "Procedure not found"})
}
