package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"code.perpnote.io/perpnote/logging"
	"code.perpnote.io/perpnote/metrics"
)

type reserveEntry struct {
	Token     string `json:"token"`
	Bond      string `json:"bond"`
	Seniority int    `json:"seniority"`
	Balance   string `json:"balance"`
}

type tvlResponse struct {
	PerpTVL   string `json:"perpTvl,omitempty"`
	VaultTVL  string `json:"vaultTvl,omitempty"`
	NotePrice string `json:"notePrice,omitempty"`
	Valid     bool   `json:"valid"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	defer s.requestTimer("health")()
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReserve(w http.ResponseWriter, _ *http.Request) {
	defer s.requestTimer("reserve")()
	out := []reserveEntry{}
	for _, t := range s.note.ReserveTokens() {
		out = append(out, reserveEntry{
			Token:     t.ID(),
			Bond:      t.Bond().ID(),
			Seniority: t.Seniority(),
			Balance:   s.note.ReserveBalance(t.ID()).String(),
		})
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleQueue(w http.ResponseWriter, _ *http.Request) {
	defer s.requestTimer("queue")()
	s.respond(w, http.StatusOK, map[string][]string{"queue": s.note.QueueIDs()})
}

func (s *Server) handleDepositBond(w http.ResponseWriter, r *http.Request) {
	defer s.requestTimer("deposit-bond")()
	ctx, cancel := context.WithTimeout(r.Context(), s.Timeout.Get())
	defer cancel()
	b, err := s.note.DepositBond(ctx)
	if err != nil {
		s.respondError(w, http.StatusNotFound, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{
		"bond":     b.ID(),
		"maturity": b.MaturityDate(),
		"ratios":   b.Ratios(),
	})
}

func (s *Server) handleTVL(w http.ResponseWriter, _ *http.Request) {
	defer s.requestTimer("tvl")()
	resp := tvlResponse{Valid: true}
	if perpTVL, ok := s.note.TVL(); ok {
		resp.PerpTVL = perpTVL.String()
		f, _ := perpTVL.Float64()
		metrics.TVLGaugeSet("perp", f)
	} else {
		resp.Valid = false
	}
	if vaultTVL, ok := s.vault.GetTVL(); ok {
		resp.VaultTVL = vaultTVL.String()
		f, _ := vaultTVL.Float64()
		metrics.TVLGaugeSet("vault", f)
	} else {
		resp.Valid = false
	}
	if price, ok := s.note.NotePrice(); ok {
		resp.NotePrice = price.String()
	}
	s.respond(w, http.StatusOK, resp)
}

func (s *Server) handleDeviationRatio(w http.ResponseWriter, _ *http.Request) {
	defer s.requestTimer("deviation-ratio")()
	dr, err := s.fees.DeviationRatio()
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, err)
		return
	}
	f, _ := dr.Float64()
	metrics.DeviationRatioGaugeSet(f)
	s.respond(w, http.StatusOK, map[string]string{"deviationRatio": dr.String()})
}

func (s *Server) handleVaultPositions(w http.ResponseWriter, _ *http.Request) {
	defer s.requestTimer("vault-positions")()
	out := []reserveEntry{}
	for _, t := range s.vault.Held() {
		out = append(out, reserveEntry{
			Token:     t.ID(),
			Bond:      t.Bond().ID(),
			Seniority: t.Seniority(),
			Balance:   t.Token().BalanceOf(s.vault.Account()).String(),
		})
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) respond(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to write response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, err error) {
	s.respond(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) requestTimer(request string) func() {
	start := time.Now()
	return func() {
		metrics.APIRequestAndTimeREST(request, time.Since(start).Seconds())
	}
}
