package api

import (
	_ "embed"
	"net/http"
	"strconv"
)

var (
	//go:embed shell/index.html
	indexPage []byte
	//go:embed shell/login.html
	loginPage []byte
	//go:embed shell/signup.html
	signupPage []byte
	//go:embed shell/property.html
	propertyPage []byte

	pages = map[string][]byte{
		"/":          indexPage,
		"/login":     loginPage,
		"/signup":    signupPage,
		"/property":  propertyPage,
		"/property/": propertyPage,
	}
)

func serveShell(page []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "text/html; charset=utf-8")
		w.Header().Add("Content-Length", strconv.Itoa(len(page)))
		w.WriteHeader(http.StatusOK)
		w.Write(page)
	}
}
