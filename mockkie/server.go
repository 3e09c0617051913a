package mockkie

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/kiegroup/kie-remote-tests/data"
	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/kieapi"

	"github.com/gorilla/mux"
)

// Config controls the fake server.
type Config struct {
	// User and Password are required as basic auth on every request, if User is non-empty.
	User     string
	Password string

	// DeploymentPolls is how many status queries it takes for a deploy or undeploy job to finish.
	// The last of them sees the outcome; until then the unit is DEPLOYING or UNDEPLOYING.
	DeploymentPolls int

	// Deployed units are already DEPLOYED when the server starts.
	Deployed []kieapi.DeploymentUnit

	// MavenRepositoryURL, if set, is where deploy jobs download the kjar from. A job whose jar
	// cannot be downloaded ends as DEPLOY_FAILED. If empty, every deploy job succeeds.
	MavenRepositoryURL string

	// DataService enables the rest/data resources.
	DataService bool

	// Faults make the server deviate from a real one.
	Faults Faults

	Logger framework.Logger
}

// Server is an http.Handler implementing the REST resources used by the test scenarios.
type Server struct {
	config      Config
	router      *mux.Router
	scripts     map[string]data.ProcessScript
	deployments map[string]*deployment
	instances   map[int64]*processInstance
	tasks       map[int64]*task
	logs        []kieapi.VariableInstanceLog
	lastID      struct{ instance, task, log int64 }
	logger      framework.Logger
	lock        sync.Mutex
}

// New creates a Server with the bundled process scripts.
func New(config Config) (*Server, error) {
	scripts, err := data.LoadProcessScripts()
	if err != nil {
		return nil, err
	}
	s := &Server{
		config:      config,
		scripts:     scripts,
		deployments: make(map[string]*deployment),
		instances:   make(map[int64]*processInstance),
		tasks:       make(map[int64]*task),
		logger:      framework.LoggerOrNull(config.Logger),
	}
	for _, u := range config.Deployed {
		u.Status = kieapi.DeploymentDeployed
		s.deployments[u.Identifier()] = &deployment{unit: u}
	}

	r := mux.NewRouter()
	r.Use(s.authenticate)
	if config.Faults.DefaultsToJSON {
		r.Use(defaultToJSON)
	}
	rest := r.PathPrefix("/rest").Subrouter()

	rest.HandleFunc("/runtime/{deploymentId}/process/{processId}/start", s.startProcess).Methods(http.MethodPost)
	rest.HandleFunc("/runtime/{deploymentId}/history/instance/{processInstanceId:[0-9]+}/variable/{variableId}",
		s.variableHistory).Methods(http.MethodGet)
	rest.HandleFunc("/runtime/{deploymentId}/execute", s.executeRuntime).Methods(http.MethodPost)

	rest.HandleFunc("/task/execute", s.executeTask).Methods(http.MethodPost)
	rest.HandleFunc("/task/query", s.queryTasks).Methods(http.MethodGet)
	rest.HandleFunc("/task/{taskId:[0-9]+}", s.getTask).Methods(http.MethodGet)
	rest.HandleFunc("/task/{taskId:[0-9]+}/start", s.startTask).Methods(http.MethodPost)
	rest.HandleFunc("/task/{taskId:[0-9]+}/complete", s.completeTask).Methods(http.MethodPost)

	if config.DataService {
		rest.HandleFunc("/data/process/instance/{processInstanceId:[0-9]+}", s.processInstanceSummary).
			Methods(http.MethodGet)
	}

	rest.HandleFunc("/deployment", s.listDeployments).Methods(http.MethodGet)
	rest.HandleFunc("/deployment/{deploymentId}", s.getDeployment).Methods(http.MethodGet)
	rest.HandleFunc("/deployment/{deploymentId}/deploy", s.deploy).Methods(http.MethodPost)
	rest.HandleFunc("/deployment/{deploymentId}/undeploy", s.undeploy).Methods(http.MethodPost)

	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.User != "" {
			user, password, ok := r.BasicAuth()
			if !ok || user != s.config.User || password != s.config.Password {
				w.Header().Set("WWW-Authenticate", `Basic realm="KIE Workbench Realm"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
		s.logger.Printf("mockkie: %s %s", r.Method, r.URL)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestUser(r *http.Request) string {
	if user, _, ok := r.BasicAuth(); ok {
		return user
	}
	return s.config.User
}

// responseMediaType is JSON only if the client asked for it. The server's default is XML.
func responseMediaType(r *http.Request) kieapi.MediaType {
	if strings.Contains(r.Header.Get("Accept"), string(kieapi.MediaTypeJSON)) {
		return kieapi.MediaTypeJSON
	}
	return kieapi.MediaTypeXML
}

func requestMediaType(r *http.Request) kieapi.MediaType {
	if strings.HasPrefix(r.Header.Get("Content-Type"), string(kieapi.MediaTypeJSON)) {
		return kieapi.MediaTypeJSON
	}
	return kieapi.MediaTypeXML
}

func writeResponse(w http.ResponseWriter, r *http.Request, status int, value any) {
	mediaType := responseMediaType(r)
	body, err := mediaType.Marshal(value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", string(mediaType))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, format string, args ...any) {
	writeResponse(w, r, status, kieapi.ExceptionResponse{
		Status:  "FAILURE",
		URL:     r.URL.String(),
		Message: fmt.Sprintf(format, args...),
	})
}

func writeSuccess(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, http.StatusOK, kieapi.GenericResponse{Status: kieapi.StatusSuccess, URL: r.URL.String()})
}
