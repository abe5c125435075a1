package article

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/articlerequest"
	"github.com/SergeyParamoshkin/blog/internal/articleresponse"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

// API serves the article endpoints.
type API struct {
	store *Store
	auth  *user.API
	log   *zap.SugaredLogger
}

func NewAPI(store *Store, auth *user.API, log *zap.SugaredLogger) *API {
	return &API{store: store, auth: auth, log: log}
}

// Mount attaches the article routes to r.
func (a *API) Mount(r chi.Router) {
	r.Route("/articles", func(r chi.Router) {
		r.With(a.auth.Optional).Get("/", a.List)
		r.With(a.auth.Authenticator).Post("/", a.Create)

		r.Route("/{slug}", func(r chi.Router) {
			r.With(a.auth.Optional, a.ArticleCtx).Get("/", a.Get)
			r.With(a.auth.Authenticator, a.ArticleCtx).Put("/", a.Update)
			r.With(a.auth.Authenticator, a.ArticleCtx).Delete("/", a.Delete)

			r.Route("/favorite", func(r chi.Router) {
				r.Use(a.auth.Authenticator, a.ArticleCtx)
				r.Post("/", a.Favorite)
				r.Delete("/", a.Unfavorite)
			})
		})
	})
}

func (a *API) List(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", model.PageLimit)

	viewer := ""
	if record, ok := user.FromContext(r.Context()); ok {
		viewer = record.Username
	}

	list := a.store.List(offset, limit, viewer)

	if err := render.Render(w, r, articleresponse.NewArticleListResponse(list)); err != nil {
		a.renderErr(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) Get(w http.ResponseWriter, r *http.Request) {
	article, ok := articleFromContext(r.Context())
	if !ok {
		a.renderErr(w, r, errresponse.ErrNotFound)

		return
	}

	if err := render.Render(w, r, articleresponse.NewArticleResponse(&article)); err != nil {
		a.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Create persists the posted Article and returns it back to the
// client as an acknowledgement.
func (a *API) Create(w http.ResponseWriter, r *http.Request) {
	record, _ := user.FromContext(r.Context())

	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		a.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	if problems := data.Validate(); problems != nil {
		a.renderErr(w, r, errresponse.ErrValidation(problems))

		return
	}

	article := a.store.Create(*data.Article, model.Author{
		Username: record.Username,
		Bio:      record.Bio,
		Image:    record.Image,
	})

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, articleresponse.NewArticleResponse(&article)); err != nil {
		a.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Update updates an existing Article in our persistent store.
func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	record, _ := user.FromContext(r.Context())

	article, ok := articleFromContext(r.Context())
	if !ok {
		a.renderErr(w, r, errresponse.ErrNotFound)

		return
	}
	if article.Author.Username != record.Username {
		a.renderErr(w, r, errresponse.ErrForbidden)

		return
	}

	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		a.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	if problems := data.Validate(); problems != nil {
		a.renderErr(w, r, errresponse.ErrValidation(problems))

		return
	}

	updated, err := a.store.Update(article.Slug, *data.Article, record.Username)
	if err != nil {
		a.renderErr(w, r, errresponse.ErrNotFound)

		return
	}

	if err := render.Render(w, r, articleresponse.NewArticleResponse(&updated)); err != nil {
		a.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Delete removes an existing Article from our persistent store.
func (a *API) Delete(w http.ResponseWriter, r *http.Request) {
	record, _ := user.FromContext(r.Context())

	article, ok := articleFromContext(r.Context())
	if !ok {
		a.renderErr(w, r, errresponse.ErrNotFound)

		return
	}
	if article.Author.Username != record.Username {
		a.renderErr(w, r, errresponse.ErrForbidden)

		return
	}

	if err := a.store.Remove(article.Slug); err != nil {
		a.renderErr(w, r, errresponse.ErrNotFound)

		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

func (a *API) Favorite(w http.ResponseWriter, r *http.Request) {
	a.setFavorite(w, r, true)
}

func (a *API) Unfavorite(w http.ResponseWriter, r *http.Request) {
	a.setFavorite(w, r, false)
}

func (a *API) setFavorite(w http.ResponseWriter, r *http.Request, favorited bool) {
	record, _ := user.FromContext(r.Context())

	article, ok := articleFromContext(r.Context())
	if !ok {
		a.renderErr(w, r, errresponse.ErrNotFound)

		return
	}

	updated, err := a.store.SetFavorite(article.Slug, record.Username, favorited)
	if err != nil {
		a.renderErr(w, r, errresponse.ErrNotFound)

		return
	}

	if err := render.Render(w, r, articleresponse.NewArticleResponse(&updated)); err != nil {
		a.renderErr(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) renderErr(w http.ResponseWriter, r *http.Request, renderer render.Renderer) {
	if err := render.Render(w, r, renderer); err != nil {
		a.log.Errorw(err.Error())
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return value
}
