package http

import "net/http"

const welcome = "Welcome to the Coupon System API"

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(welcome))
}
