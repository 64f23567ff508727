package server

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
	"github.com/cheatbot1234/thrust-vector-forge/internal/platform"
)

// handleStudySocket streams one JSON event per finished trial and closes
// after the terminal state event. Connecting to a study that already finished
// yields the terminal event immediately.
func (s *Server) handleStudySocket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	study, ok, err := s.forge.Study(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, &platform.NotFoundError{Kind: "study", ID: id})
		return
	}

	// Subscribe before upgrading so no event between the two is lost.
	events, cancel := s.forge.WatchStudy(id)
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithFields(log.Fields{"study": id, "error": err}).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if terminal(study.State) {
		event := platform.StudyEvent{
			Type:      platform.EventState,
			StudyID:   id,
			State:     study.State,
			Completed: len(study.Trials),
			Total:     study.Config.Trials,
		}
		if err := conn.WriteJSON(event); err != nil {
			log.WithFields(log.Fields{"study": id, "error": err}).Debug("websocket write failed")
		}
		return
	}

	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-events:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.Type == platform.EventState {
				return
			}
		case <-clientGone:
			return
		}
	}
}

func terminal(state string) bool {
	switch state {
	case model.StudyComplete, model.StudyStopped, model.StudyFailed:
		return true
	default:
		return false
	}
}
