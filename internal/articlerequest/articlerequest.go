package articlerequest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

// ArticleRequest is the request envelope for article create and
// update.
type ArticleRequest struct {
	Article *model.ArticleDraft `json:"article"`
}

// Bind on ArticleRequest will run after the unmarshalling is
// complete, its a good time to focus some post-processing after a
// decoding.
func (a *ArticleRequest) Bind(r *http.Request) error {
	// a.Article is nil if no article fields are sent in the request.
	// Return an error to avoid a nil pointer dereference.
	if a.Article == nil {
		return errors.New("missing required article fields.")
	}

	a.Article.Title = strings.TrimSpace(a.Article.Title)

	return nil
}

// Validate reports field-level problems in the server's
// `errors` map shape. A nil map means the draft is acceptable.
func (a *ArticleRequest) Validate() map[string][]string {
	problems := make(map[string][]string)

	if a.Article.Title == "" {
		problems["title"] = append(problems["title"], "can't be blank")
	}
	if a.Article.Description == "" {
		problems["description"] = append(problems["description"], "can't be blank")
	}
	if a.Article.Body == "" {
		problems["body"] = append(problems["body"], "can't be blank")
	}

	if len(problems) == 0 {
		return nil
	}

	return problems
}
