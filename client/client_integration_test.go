// client_integration_test.go
//go:build integration
// +build integration

package client

import (
	"context"
	"testing"
)

var c = New("http://localhost:3333/api")

func TestPing(t *testing.T) {
	if s, err := c.Ping(context.Background()); err != nil || s != "pong" {
		t.Fail()
	}
}

func TestListArticlesAgainstRunningServer(t *testing.T) {
	list, err := c.ListArticles(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}

	if list.ArticlesCount < len(list.Articles) {
		t.Fail()
	}
}
