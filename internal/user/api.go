package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/userpayload"
)

type ctxKey int8

const (
	ctxKeyUser ctxKey = iota
	ctxKeyToken
)

// API serves the user endpoints and owns the authentication
// middleware the rest of the router builds on.
type API struct {
	store  *Store
	tokens *TokenIssuer
	log    *zap.SugaredLogger
}

func NewAPI(store *Store, tokens *TokenIssuer, log *zap.SugaredLogger) *API {
	return &API{store: store, tokens: tokens, log: log}
}

// Mount attaches the user routes to r.
func (a *API) Mount(r chi.Router) {
	r.Post("/users", a.Register)
	r.Post("/users/login", a.Login)

	r.Route("/user", func(r chi.Router) {
		r.Use(a.Authenticator)
		r.Get("/", a.Current)
		r.Put("/", a.Update)
	})
}

// FromContext returns the authenticated account placed on the request
// context by Authenticator or Optional.
func FromContext(ctx context.Context) (*Record, bool) {
	record, ok := ctx.Value(ctxKeyUser).(*Record)

	return record, ok
}

// Authenticator rejects requests without a valid bearer token and
// loads the account onto the request context.
func (a *API) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record, token, err := a.resolve(r)
		if err != nil {
			if err := render.Render(w, r, errresponse.ErrUnauthorized); err != nil {
				a.log.Errorw(err.Error())
			}

			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), record, token)))
	})
}

// Optional loads the account when a valid bearer token is present and
// lets anonymous requests through untouched.
func (a *API) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record, token, err := a.resolve(r)
		if err != nil {
			next.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), record, token)))
	})
}

func withUser(ctx context.Context, record *Record, token string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUser, record)

	return context.WithValue(ctx, ctxKeyToken, token)
}

func (a *API) resolve(r *http.Request) (*Record, string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, "", errors.New("missing bearer token")
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	username, err := a.tokens.Verify(token)
	if err != nil {
		return nil, "", err
	}

	record, ok := a.store.Get(username)
	if !ok {
		return nil, "", errors.New("token for unknown user")
	}

	return record, token, nil
}

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.UserRequest{}
	if err := render.Bind(r, data); err != nil {
		a.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	if problems := requireFields(data.User, true); problems != nil {
		a.renderErr(w, r, errresponse.ErrValidation(problems))

		return
	}

	record, err := a.store.Register(data.User.Username, data.User.Email, data.User.Password)
	if err != nil {
		a.renderFieldErr(w, r, err)

		return
	}

	render.Status(r, http.StatusCreated)
	a.respondWithToken(w, r, record)
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.UserRequest{}
	if err := render.Bind(r, data); err != nil {
		a.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	if problems := requireFields(data.User, false); problems != nil {
		a.renderErr(w, r, errresponse.ErrValidation(problems))

		return
	}

	record, err := a.store.Authenticate(data.User.Email, data.User.Password)
	if err != nil {
		a.renderFieldErr(w, r, err)

		return
	}

	a.respondWithToken(w, r, record)
}

func (a *API) Current(w http.ResponseWriter, r *http.Request) {
	record, _ := FromContext(r.Context())
	token, _ := r.Context().Value(ctxKeyToken).(string)

	user := record.User
	user.Token = token

	if err := render.Render(w, r, userpayload.NewUserResponse(&user)); err != nil {
		a.renderErr(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	record, _ := FromContext(r.Context())
	token, _ := r.Context().Value(ctxKeyToken).(string)

	data := &userpayload.UserRequest{}
	if err := render.Bind(r, data); err != nil {
		a.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	updated, err := a.store.Update(record.Username, model.UserUpdate{
		Username: data.User.Username,
		Email:    data.User.Email,
		Password: data.User.Password,
		Bio:      data.User.Bio,
		Image:    data.User.Image,
	})
	if err != nil {
		a.renderFieldErr(w, r, err)

		return
	}

	user := updated.User
	user.Token = token

	if err := render.Render(w, r, userpayload.NewUserResponse(&user)); err != nil {
		a.renderErr(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) respondWithToken(w http.ResponseWriter, r *http.Request, record *Record) {
	token, err := a.tokens.Issue(record.Username)
	if err != nil {
		a.renderErr(w, r, errresponse.ErrRender(err))

		return
	}

	user := record.User
	user.Token = token

	if err := render.Render(w, r, userpayload.NewUserResponse(&user)); err != nil {
		a.renderErr(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) renderErr(w http.ResponseWriter, r *http.Request, renderer render.Renderer) {
	if err := render.Render(w, r, renderer); err != nil {
		a.log.Errorw(err.Error())
	}
}

func (a *API) renderFieldErr(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		a.renderErr(w, r, errresponse.ErrValidation(map[string][]string{
			fieldErr.Field: {fieldErr.Message},
		}))

		return
	}

	a.renderErr(w, r, errresponse.ErrInvalidRequest(err))
}

// requireFields checks the subset of fields each auth endpoint needs:
// login wants email and password, registration a username as well.
func requireFields(fields *userpayload.UserFields, username bool) map[string][]string {
	problems := make(map[string][]string)

	if username && fields.Username == "" {
		problems["username"] = append(problems["username"], "can't be blank")
	}
	if fields.Email == "" {
		problems["email"] = append(problems["email"], "can't be blank")
	}
	if fields.Password == "" {
		problems["password"] = append(problems["password"], "can't be blank")
	}

	if len(problems) == 0 {
		return nil
	}

	return problems
}
