package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/list-engine/internal/lists"
	"github.com/ignite/list-engine/internal/subscribers"
)

// API provides the REST surface for triggering notifications, used by the
// subscription frontends after confirmation state changes.
type API struct {
	lists      *lists.Store
	subs       *subscribers.Store
	dispatcher *Dispatcher
}

// NewAPI creates the notifications API.
func NewAPI(listStore *lists.Store, subStore *subscribers.Store, d *Dispatcher) *API {
	return &API{lists: listStore, subs: subStore, dispatcher: d}
}

// RegisterRoutes mounts the notification routes under
// /lists/{listID}/notifications.
func (api *API) RegisterRoutes(r chi.Router) {
	r.Post("/lists/{listID}/notifications/{kind}", api.HandleSendNotification)
}

type sendRequest struct {
	// Email is the delivery address. Required when no subscriber cid is
	// given; otherwise it defaults to the subscription's address.
	Email string `json:"email,omitempty"`
	// SubscriberCID identifies the subscription to merge field values from.
	SubscriberCID string `json:"subscriber_cid,omitempty"`
	// ConfirmCID identifies the pending confirmation for confirm-type
	// kinds.
	ConfirmCID string `json:"confirm_cid,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// HandleSendNotification triggers one notification.
// POST /api/lists/{listID}/notifications/{kind}
func (api *API) HandleSendNotification(w http.ResponseWriter, r *http.Request) {
	listID, err := strconv.ParseInt(chi.URLParam(r, "listID"), 10, 64)
	if err != nil || listID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}
	kind := Kind(chi.URLParam(r, "kind"))
	if !Valid(kind) {
		writeError(w, http.StatusBadRequest, "unknown notification kind")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" && req.SubscriberCID == "" {
		writeError(w, http.StatusBadRequest, "email or subscriber_cid required")
		return
	}
	if confirmKind(kind) && req.ConfirmCID == "" {
		writeError(w, http.StatusBadRequest, "confirm_cid required for this kind")
		return
	}
	if needsSubscription(kind) && req.SubscriberCID == "" {
		writeError(w, http.StatusBadRequest, "subscriber_cid required for this kind")
		return
	}

	ctx := r.Context()
	list, err := api.lists.GetList(ctx, listID)
	if errors.Is(err, lists.ErrListNotFound) {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load list")
		return
	}

	var sub *subscribers.Subscription
	if req.SubscriberCID != "" {
		sub, err = api.subs.GetByCID(ctx, listID, req.SubscriberCID)
		if errors.Is(err, subscribers.ErrSubscriptionNotFound) {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load subscription")
			return
		}
	}

	email := req.Email
	if email == "" {
		email = sub.Email
	}

	if err := api.send(ctx, list, email, kind, req.ConfirmCID, sub); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send notification")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func confirmKind(kind Kind) bool {
	switch kind {
	case KindConfirmAddressChange, KindConfirmSubscription, KindConfirmUnsubscription:
		return true
	}
	return false
}

// needsSubscription marks the kinds whose links point at an existing
// subscription record.
func needsSubscription(kind Kind) bool {
	switch kind {
	case KindSubscriptionConfirmed, KindAlreadySubscribed, KindUnsubscriptionConfirmed:
		return true
	}
	return false
}

func (api *API) send(ctx context.Context, list *lists.List, email string, kind Kind, confirmCID string, sub *subscribers.Subscription) error {
	switch kind {
	case KindSubscriptionConfirmed:
		return api.dispatcher.SendSubscriptionConfirmed(ctx, list, email, sub)
	case KindAlreadySubscribed:
		return api.dispatcher.SendAlreadySubscribed(ctx, list, email, sub)
	case KindConfirmAddressChange:
		return api.dispatcher.SendConfirmAddressChange(ctx, list, email, confirmCID, sub)
	case KindConfirmSubscription:
		return api.dispatcher.SendConfirmSubscription(ctx, list, email, confirmCID, sub)
	case KindConfirmUnsubscription:
		return api.dispatcher.SendConfirmUnsubscription(ctx, list, email, confirmCID, sub)
	case KindUnsubscriptionConfirmed:
		return api.dispatcher.SendUnsubscriptionConfirmed(ctx, list, email, sub)
	}
	return fmt.Errorf("unknown notification kind %q", kind)
}
