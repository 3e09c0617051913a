package mockkie

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kiegroup/kie-remote-tests/kieapi"
	"github.com/kiegroup/kie-remote-tests/mavenrepo"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-cleanhttp"
)

type deployment struct {
	unit           kieapi.DeploymentUnit
	pollsRemaining int
	// outcome is the status the current job ends in
	outcome kieapi.DeploymentStatus
}

func (s *Server) listDeployments(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	list := kieapi.DeploymentUnitList{Units: []kieapi.DeploymentUnit{}}
	for _, d := range s.deployments {
		list.Units = append(list.Units, d.unit)
	}
	s.lock.Unlock()
	writeResponse(w, r, http.StatusOK, list)
}

func (s *Server) getDeployment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["deploymentId"]
	s.lock.Lock()
	d := s.deployments[id]
	var unit kieapi.DeploymentUnit
	if d != nil {
		if d.pollsRemaining > 0 {
			d.pollsRemaining--
		}
		if d.pollsRemaining == 0 && d.outcome != "" {
			d.unit.Status = d.outcome
			d.outcome = ""
		}
		unit = d.unit
	}
	s.lock.Unlock()
	if d == nil {
		writeError(w, r, http.StatusNotFound, "%s: %s", errNoDeployment, id)
		return
	}
	writeResponse(w, r, http.StatusOK, unit)
}

func parseDeploymentID(id string) (kieapi.DeploymentUnit, error) {
	parts := strings.Split(id, ":")
	switch len(parts) {
	case 3:
		return kieapi.DeploymentUnit{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
	case 5:
		return kieapi.DeploymentUnit{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2],
			KBaseName: parts[3], KSessionName: parts[4]}, nil
	}
	return kieapi.DeploymentUnit{}, fmt.Errorf("invalid deployment id %q", id)
}

func (s *Server) deploy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["deploymentId"]
	unit, err := parseDeploymentID(id)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "%s", err)
		return
	}
	unit.Strategy, err = kieapi.ParseRuntimeStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "%s", err)
		return
	}

	outcome := kieapi.DeploymentDeployed
	explanation := ""
	if s.config.MavenRepositoryURL != "" {
		if err := s.fetchKjar(r.Context(), unit); err != nil {
			s.logger.Printf("mockkie: deployment of %s will fail: %s", id, err)
			outcome, explanation = kieapi.DeploymentDeployFailed, err.Error()
		}
	}

	s.lock.Lock()
	d := s.deployments[id]
	if d == nil {
		d = &deployment{}
		s.deployments[id] = d
	}
	unit.Status = kieapi.DeploymentDeploying
	d.unit = unit
	d.outcome = outcome
	d.pollsRemaining = s.config.DeploymentPolls
	s.lock.Unlock()

	writeResponse(w, r, http.StatusAccepted, kieapi.DeploymentJobResult{
		JobID:          uuid.NewString(),
		Operation:      kieapi.OperationDeploy,
		DeploymentUnit: unit,
		Success:        true,
		Explanation:    explanation,
	})
}

func (s *Server) undeploy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["deploymentId"]
	s.lock.Lock()
	d := s.deployments[id]
	var unit kieapi.DeploymentUnit
	if d != nil {
		d.unit.Status = kieapi.DeploymentUndeploying
		d.outcome = kieapi.DeploymentUndeployed
		if s.config.Faults.UndeployNeverFinishes {
			d.outcome = ""
		}
		d.pollsRemaining = s.config.DeploymentPolls
		for _, p := range s.instances {
			if p.deploymentID == id && p.state == kieapi.ProcessStateActive {
				p.state = kieapi.ProcessStateAborted
			}
		}
		unit = d.unit
	}
	s.lock.Unlock()
	if d == nil {
		writeError(w, r, http.StatusNotFound, "%s: %s", errNoDeployment, id)
		return
	}
	writeResponse(w, r, http.StatusAccepted, kieapi.DeploymentJobResult{
		JobID:          uuid.NewString(),
		Operation:      kieapi.OperationUndeploy,
		DeploymentUnit: unit,
		Success:        true,
	})
}

func (s *Server) fetchKjar(ctx context.Context, unit kieapi.DeploymentUnit) error {
	artifact := mavenrepo.Artifact{GroupID: unit.GroupID, ArtifactID: unit.ArtifactID, Version: unit.Version}
	url := strings.TrimSuffix(s.config.MavenRepositoryURL, "/") + "/" + artifact.Path()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := cleanhttp.DefaultClient().Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("could not resolve %s from %s: status %d", artifact, s.config.MavenRepositoryURL, resp.StatusCode)
	}
	return nil
}

// DeploymentStatus returns the current status of a unit without counting as a poll.
func (s *Server) DeploymentStatus(id string) kieapi.DeploymentStatus {
	s.lock.Lock()
	defer s.lock.Unlock()
	if d := s.deployments[id]; d != nil {
		return d.unit.Status
	}
	return kieapi.DeploymentNonexistent
}
