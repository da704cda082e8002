package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/qabank/qabank/domain/identity"
)

// ActorKey is the context key for the authenticated actor.
type ActorKey struct{}

// ActorResolver loads the user a request acts as.
type ActorResolver interface {
	Get(ctx context.Context, id int64) (identity.User, error)
}

// Actor resolves the X-Actor-ID header to a user and stores it in the
// request context. Requests without the header proceed anonymously; the
// guardian decides per operation what anonymous actors may do. An id that
// resolves to no user is rejected outright.
func Actor(users ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("X-Actor-ID")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseInt(header, 10, 64)
			if err != nil || id <= 0 {
				writeUnauthorized(w, "Invalid X-Actor-ID header")
				return
			}

			user, err := users.Get(r.Context(), id)
			if err != nil {
				writeUnauthorized(w, "Unknown actor")
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey{}, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActor retrieves the actor from the context, nil for anonymous requests.
func GetActor(ctx context.Context) *identity.User {
	if user, ok := ctx.Value(ActorKey{}).(*identity.User); ok {
		return user
	}
	return nil
}
