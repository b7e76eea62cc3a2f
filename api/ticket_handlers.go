package api

import (
	"errors"
	"net/http"

	"ctiscope/core"
	"ctiscope/storage"
)

type createTicketRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Severity    string `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	IOCValue    string `json:"ioc_value"`
}

// createTicket files a new investigation ticket.
func (a *API) createTicket(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var req createTicketRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if req.Severity == "" {
		req.Severity = "medium"
	}

	ticket, err := a.tickets.Create(req.Title, req.Description, req.Severity, req.IOCValue, user.Username)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, "failed to create ticket", err)
		return
	}

	if err := a.audit.Log(user.Username, "Created ticket", ticket.ID); err != nil {
		a.logger.Errorw("failed to write audit entry", "error", err)
	}

	a.respondJSON(w, ticket, http.StatusCreated)
}

// listTickets returns all tickets, newest first.
func (a *API) listTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := a.tickets.List()
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, "failed to list tickets", err)
		return
	}
	a.respondJSON(w, tickets, http.StatusOK)
}

// getTicket returns a single ticket.
func (a *API) getTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := a.tickets.Get(muxVar(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrTicketNotFound) {
			a.respondError(w, http.StatusNotFound, "ticket not found", nil)
			return
		}
		a.respondError(w, http.StatusInternalServerError, "failed to read ticket", err)
		return
	}
	a.respondJSON(w, ticket, http.StatusOK)
}

type updateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress closed"`
}

// updateTicketStatus transitions a ticket between lifecycle states.
func (a *API) updateTicketStatus(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	id := muxVar(r, "id")

	var req updateTicketStatusRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	ticket, err := a.tickets.UpdateStatus(id, core.TicketStatus(req.Status))
	if err != nil {
		if errors.Is(err, storage.ErrTicketNotFound) {
			a.respondError(w, http.StatusNotFound, "ticket not found", nil)
			return
		}
		a.respondError(w, http.StatusInternalServerError, "failed to update ticket", err)
		return
	}

	if err := a.audit.Log(user.Username, "Updated ticket status", id); err != nil {
		a.logger.Errorw("failed to write audit entry", "error", err)
	}

	a.respondJSON(w, ticket, http.StatusOK)
}
