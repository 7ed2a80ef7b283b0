package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/minihttp/minihttp"
	"github.com/minihttp/minihttp/metrics"
)

const invalidLoginMessage = "Invalid username or password."

type loginView struct {
	Resource string
	Action   string
	Username string
	Error    string
}

func newLoginView(returnURL, username, errMsg string) loginView {
	resource := returnURL
	if decoded, err := url.PathUnescape(returnURL); err == nil {
		resource = decoded
	}

	return loginView{
		Resource: resource,
		Action:   minihttp.LoginPath + "?" + minihttp.ReturnURLParam + "=" + url.QueryEscape(returnURL),
		Username: username,
		Error:    errMsg,
	}
}

func (g *authGate) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	returnURL := minihttp.ReturnURL(r.URL.Query())

	if g.current(r, g.now()) != nil {
		http.Redirect(w, r, returnURL, http.StatusFound)
		return
	}

	renderHTML(w, http.StatusOK, loginTemplate, newLoginView(returnURL, "", ""))
}

func (g *authGate) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	returnURL := minihttp.ReturnURL(r.URL.Query())

	if err := r.ParseForm(); err != nil {
		WriteText(w, http.StatusBadRequest, "Bad request.")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	if err := g.policy.Credentials.Authenticate(username, password); err != nil {
		if !errors.Is(err, minihttp.ErrInvalidCredentials) {
			HandleError(w, r, err)
			return
		}
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		metrics.RecordLoginAttempt("failure")
		renderHTML(w, http.StatusOK, loginTemplate, newLoginView(returnURL, username, invalidLoginMessage))
		return
	}

	now := g.now()
	sess := minihttp.NewSession(g.policy.Credentials.Username, g.policy.Identity, now, g.policy.Credentials.SessionLifetime())
	if err := g.cookies.write(w, r, sess, now); err != nil {
		HandleError(w, r, err)
		return
	}

	slog.Info("login succeeded", "username", username, "remote", r.RemoteAddr)
	metrics.RecordLoginAttempt("success")
	http.Redirect(w, r, returnURL, http.StatusFound)
}

func (g *authGate) handleLogout(w http.ResponseWriter, r *http.Request) {
	returnURL := minihttp.ReturnURL(r.URL.Query())

	if g.cookies.attached(r) {
		g.cookies.destroy(w, r, errors.New("logout"))
	} else {
		g.cookies.clear(w, r)
	}

	http.Redirect(w, r, returnURL, http.StatusFound)
}

func loginRateLimited(w http.ResponseWriter, r *http.Request) {
	slog.Warn("login rate limited", "remote", r.RemoteAddr)
	metrics.RecordLoginAttempt("rate_limited")
}
