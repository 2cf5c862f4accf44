package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

// newServerClient points a client at a local test server
func newServerClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	gh := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = base
	return &Client{gh: gh, sem: semaphore.NewWeighted(2)}
}

func TestListUserRepositoriesFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/user/repos?page=2>; rel="next", <%s/user/repos?page=2>; rel="last"`, srv.URL, srv.URL))
			fmt.Fprint(w, `[{"id":1,"full_name":"octo/alpha"},{"id":2,"full_name":"octo/beta"}]`)
		case "2":
			fmt.Fprint(w, `[{"id":3,"full_name":"octo/gamma"}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	repos, err := newServerClient(t, srv).ListUserRepositories(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, repos, 3)
	assert.Equal(t, "octo/gamma", repos[2].GetFullName())
}

// repoPage renders n repositories with ids starting at first
func repoPage(first, n int) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":%d,"full_name":"octo/repo-%d"}`, first+i, first+i)
	}
	b.WriteString("]")
	return b.String()
}

func TestListUserRepositoriesSingleFullPage(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		requests++
		// Exactly one full page: no Link header, so no follow-up fetch
		fmt.Fprint(w, repoPage(1, 100))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	repos, err := newServerClient(t, srv).ListUserRepositories(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, repos, 100)
	assert.Equal(t, 1, requests)
}

func TestListUserRepositoriesPageBoundary(t *testing.T) {
	requests := 0
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/user/repos?page=2>; rel="next", <%s/user/repos?page=2>; rel="last"`, srv.URL, srv.URL))
			fmt.Fprint(w, repoPage(1, 100))
		case "2":
			fmt.Fprint(w, repoPage(101, 1))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	repos, err := newServerClient(t, srv).ListUserRepositories(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, repos, 101, "one item past the page boundary, nothing duplicated or dropped")
	assert.Equal(t, 2, requests)

	seen := make(map[int64]bool, len(repos))
	for _, repo := range repos {
		assert.False(t, seen[repo.GetID()], "repository %d appeared twice", repo.GetID())
		seen[repo.GetID()] = true
	}
	assert.Equal(t, int64(101), repos[100].GetID())
}

func TestSetTokenIsSafeDuringCalls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newServerClient(t, srv)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				client.SetToken("gho_rotating")
				client.SetToken("")
			}
		}()
	}
	// Swapping the token mid-flight must never corrupt the client; calls
	// started before a swap finish on the client they began with.
	for i := 0; i < 20; i++ {
		_, err := client.ListUserRepositories(context.Background(), 100)
		assert.NoError(t, err)
	}
	wg.Wait()
}

func TestListUserRepositoriesEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	repos, err := newServerClient(t, srv).ListUserRepositories(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestListPullRequestsCarriesState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/alpha/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[{"id":100,"number":1,"title":"First"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	prs, err := newServerClient(t, srv).ListPullRequests(context.Background(), "octo", "alpha", "all", 100)
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, 1, prs[0].GetNumber())
}

func TestGetRepositoryNotFoundIsNil(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	repo, err := newServerClient(t, srv).GetRepository(context.Background(), "octo", "missing")
	require.NoError(t, err, "a missing repository is not an error")
	assert.Nil(t, repo)
}

func TestGetPullRequestNotFoundIsNil(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/alpha/pulls/99", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	pr, err := newServerClient(t, srv).GetPullRequest(context.Background(), "octo", "alpha", 99)
	require.NoError(t, err)
	assert.Nil(t, pr)
}

func TestGetRepositoryServerErrorSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/alpha", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"boom"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := newServerClient(t, srv).GetRepository(context.Background(), "octo", "alpha")
	assert.Error(t, err)
}

func TestListReviewsSinglePage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/alpha/pulls/1/reviews", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":50,"state":"APPROVED"},{"id":51,"state":"CHANGES_REQUESTED"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	reviews, err := newServerClient(t, srv).ListReviews(context.Background(), "octo", "alpha", 1, 100)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "APPROVED", reviews[0].GetState())
}

func TestCancelledContextStopsCalls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newServerClient(t, srv).ListUserRepositories(ctx, 100)
	assert.ErrorIs(t, err, context.Canceled)
}
