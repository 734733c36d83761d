package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"couponsystem/internal/api/dto"
	"couponsystem/internal/coupon"
	"couponsystem/internal/coupon/service"
)

const serverError = "Server Error"

type Handler struct {
	Service *service.Service
	Log     zerolog.Logger
}

func NewHandler(svc *service.Service, log zerolog.Logger) *Handler {
	return &Handler{Service: svc, Log: log}
}

func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.Service.ListCoupons(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if coupons == nil {
		coupons = []*coupon.Coupon{}
	}
	writeJSON(w, http.StatusOK, coupons)
}

func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON body"})
		return
	}

	req, err := dto.DecodeCreateCoupon(body)
	if err != nil {
		var typeErr *dto.TypeError
		var verr *dto.ValidationError
		switch {
		case errors.As(err, &typeErr):
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": typeErr.Message})
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"message": "Validation failed",
				"errors":  verr.Errors,
			})
		default:
			h.serverError(w, r, err)
		}
		return
	}

	var created *coupon.Coupon
	switch req := req.(type) {
	case *dto.UserCouponRequest:
		created, err = h.Service.CreateUserCoupon(r.Context(), *req.UserID, *req.Discount, req.Code)
	case *dto.TimeCouponRequest:
		created, err = h.Service.CreateTimeCoupon(r.Context(), *req.Discount, req.From, req.To, *req.MaxRedemptions, req.Code)
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	req, err := dto.DecodeValidateCoupon(body)
	if err != nil {
		h.requestError(w, r, err)
		return
	}

	res, err := h.Service.ValidateCoupon(r.Context(), *req.Code, req.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) RedeemCoupon(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	req, err := dto.DecodeRedeemCoupon(body)
	if err != nil {
		h.requestError(w, r, err)
		return
	}

	res, err := h.Service.RedeemCoupon(r.Context(), *req.Code, *req.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": []dto.FieldError{{Field: "body", Message: "Invalid JSON body"}},
		})
		return nil, false
	}
	return body, true
}

// requestError answers validate and redeem input failures as {error:[...]}.
func (h *Handler) requestError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *dto.ValidationError
	if !errors.As(err, &verr) {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": verr.Errors})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.Log.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": serverError})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
