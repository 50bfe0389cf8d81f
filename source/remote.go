package source

import (
	"crypto/rand"
	"log"
	"math"
	"math/big"
	"net/url"
	"path"
	"time"

	"github.com/parnurzeal/gorequest"
	"golang.org/x/xerrors"
)

const (
	imagesPath   = "api/v1/images"
	defaultRetry = 2
)

// Remote fetches scan payloads from a console over HTTPS with basic auth.
type Remote struct {
	baseURL  *url.URL
	username string
	password string
	search   string
	retry    int
}

type RemoteOption func(*Remote)

// WithSearch forwards a search spec to the console so it only returns
// matching images.
func WithSearch(spec string) RemoteOption {
	return func(r *Remote) { r.search = spec }
}

func WithRetry(retry int) RemoteOption {
	return func(r *Remote) { r.retry = retry }
}

func NewRemote(baseURL *url.URL, username, password string, opts ...RemoteOption) *Remote {
	r := &Remote{
		baseURL:  baseURL,
		username: username,
		password: password,
		retry:    defaultRetry,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Remote) Images() ([]byte, error) {
	u := *r.baseURL
	u.Path = path.Join(u.Path, imagesPath)
	if r.search != "" {
		q := u.Query()
		q.Set("search", r.search)
		u.RawQuery = q.Encode()
	}
	return r.fetchURL(u.String())
}

// fetchURL returns the HTTP response body with retry.
func (r *Remote) fetchURL(url string) (body []byte, err error) {
	for i := 0; i <= r.retry; i++ {
		if i > 0 {
			wait := math.Pow(float64(i), 2) + float64(randInt()%10)
			log.Printf("retry after %f seconds\n", wait)
			time.Sleep(time.Duration(wait) * time.Second)
		}
		body, err = r.fetch(url)
		if err == nil {
			return body, nil
		}
	}
	return nil, xerrors.Errorf("failed to fetch URL: %w", err)
}

func (r *Remote) fetch(url string) ([]byte, error) {
	req := gorequest.New().Get(url).SetBasicAuth(r.username, r.password)
	resp, body, errs := req.Type("text").EndBytes()
	if len(errs) > 0 {
		return nil, xerrors.Errorf("HTTP error. url: %s, err: %w", url, errs[0])
	}
	if resp.StatusCode != 200 {
		return nil, xerrors.Errorf("HTTP error. status code: %d, url: %s", resp.StatusCode, url)
	}
	return body, nil
}

func randInt() int {
	seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	return int(seed.Int64())
}
