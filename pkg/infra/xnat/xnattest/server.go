// Package xnattest provides an in-process XNAT server serving a fixed project hierarchy.
package xnattest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
)

// File is a downloadable file of a resource
type File struct {
	Name    string
	Content []byte
}

// Resource groups the files of a scan
type Resource struct {
	Label string
	Files []File
}

// Scan is a typed acquisition of an experiment
type Scan struct {
	ID        string
	XSIType   string
	Resources []Resource
}

// Experiment is an imaging session of a subject
type Experiment struct {
	ID    string
	Label string
	Scans []Scan
}

// Subject belongs to a project
type Subject struct {
	ID          string
	Experiments []Experiment
}

// Project is a top level XNAT project
type Project struct {
	ID       string
	Name     string
	Subjects []Subject
}

// Server serves Projects under /data/projects with HTTP Basic auth
type Server struct {
	*httptest.Server

	Username string
	Password string

	mu       sync.Mutex
	projects []Project
	failures map[string]int
	requests []string
}

// NewServer starts a server for projects. Close it with Server.Close.
func NewServer(projects ...Project) *Server {
	s := &Server{
		Username: "admin",
		Password: "admin",
		projects: projects,
		failures: map[string]int{},
	}

	router := chi.NewRouter()
	router.Use(s.middleware)
	router.Get("/data/projects", s.handleProjects)
	router.Get("/data/projects/{project}/subjects", s.handleSubjects)
	router.Get("/data/projects/{project}/subjects/{subject}/experiments", s.handleExperiments)
	router.Get("/data/projects/{project}/subjects/{subject}/experiments/{experiment}/scans", s.handleScans)
	router.Get("/data/projects/{project}/subjects/{subject}/experiments/{experiment}/scans/{scan}/resources", s.handleResources)
	router.Get("/data/projects/{project}/subjects/{subject}/experiments/{experiment}/scans/{scan}/resources/{resource}/files", s.handleFiles)
	router.Get("/data/projects/{project}/subjects/{subject}/experiments/{experiment}/scans/{scan}/resources/{resource}/files/{file}", s.handleFile)

	s.Server = httptest.NewServer(router)
	return s
}

// SetProjects replaces the served hierarchy
func (s *Server) SetProjects(projects ...Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
}

// Fail makes requests to path answer with status
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Requests returns the paths requested so far
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// FilePath returns the URI of a file as it appears in a files listing
func FilePath(projectID, subjectID, experimentID, scanID, resourceLabel, name string) string {
	return "/data/projects/" + projectID + "/subjects/" + subjectID + "/experiments/" + experimentID +
		"/scans/" + scanID + "/resources/" + resourceLabel + "/files/" + name
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		status, fail := s.failures[r.URL.Path]
		s.mu.Unlock()

		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if fail {
			w.WriteHeader(status)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) snapshot() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects
}

func (s *Server) findProject(r *http.Request) *Project {
	projects := s.snapshot()
	for i := range projects {
		if projects[i].ID == chi.URLParam(r, "project") {
			return &projects[i]
		}
	}
	return nil
}

func (s *Server) findSubject(r *http.Request) *Subject {
	p := s.findProject(r)
	if p == nil {
		return nil
	}
	for i := range p.Subjects {
		if p.Subjects[i].ID == chi.URLParam(r, "subject") {
			return &p.Subjects[i]
		}
	}
	return nil
}

func (s *Server) findExperiment(r *http.Request) *Experiment {
	sub := s.findSubject(r)
	if sub == nil {
		return nil
	}
	for i := range sub.Experiments {
		if sub.Experiments[i].ID == chi.URLParam(r, "experiment") {
			return &sub.Experiments[i]
		}
	}
	return nil
}

func (s *Server) findScan(r *http.Request) *Scan {
	exp := s.findExperiment(r)
	if exp == nil {
		return nil
	}
	for i := range exp.Scans {
		if exp.Scans[i].ID == chi.URLParam(r, "scan") {
			return &exp.Scans[i]
		}
	}
	return nil
}

func (s *Server) findResource(r *http.Request) *Resource {
	scan := s.findScan(r)
	if scan == nil {
		return nil
	}
	for i := range scan.Resources {
		if scan.Resources[i].Label == chi.URLParam(r, "resource") {
			return &scan.Resources[i]
		}
	}
	return nil
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	var records []map[string]string
	for _, p := range s.snapshot() {
		records = append(records, map[string]string{"ID": p.ID, "name": p.Name})
	}
	writeResultSet(w, records)
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	p := s.findProject(r)
	if p == nil {
		http.NotFound(w, r)
		return
	}
	var records []map[string]string
	for _, sub := range p.Subjects {
		records = append(records, map[string]string{"ID": sub.ID, "label": sub.ID, "project": p.ID})
	}
	writeResultSet(w, records)
}

func (s *Server) handleExperiments(w http.ResponseWriter, r *http.Request) {
	sub := s.findSubject(r)
	if sub == nil {
		http.NotFound(w, r)
		return
	}
	var records []map[string]string
	for _, exp := range sub.Experiments {
		records = append(records, map[string]string{"ID": exp.ID, "label": exp.Label})
	}
	writeResultSet(w, records)
}

func (s *Server) handleScans(w http.ResponseWriter, r *http.Request) {
	exp := s.findExperiment(r)
	if exp == nil {
		http.NotFound(w, r)
		return
	}
	var records []map[string]string
	for _, scan := range exp.Scans {
		records = append(records, map[string]string{"ID": scan.ID, "xsiType": scan.XSIType})
	}
	writeResultSet(w, records)
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	scan := s.findScan(r)
	if scan == nil {
		http.NotFound(w, r)
		return
	}
	var records []map[string]string
	for i, res := range scan.Resources {
		records = append(records, map[string]string{
			"label":                    res.Label,
			"xnat_abstractresource_id": strconv.Itoa(i + 1),
		})
	}
	writeResultSet(w, records)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	res := s.findResource(r)
	if res == nil {
		http.NotFound(w, r)
		return
	}
	var records []map[string]string
	for _, f := range res.Files {
		records = append(records, map[string]string{
			"Name": f.Name,
			"Size": strconv.Itoa(len(f.Content)),
			"URI":  r.URL.Path + "/" + f.Name,
		})
	}
	writeResultSet(w, records)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	res := s.findResource(r)
	if res == nil {
		http.NotFound(w, r)
		return
	}
	for _, f := range res.Files {
		if f.Name == chi.URLParam(r, "file") {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(f.Content)
			return
		}
	}
	http.NotFound(w, r)
}

func writeResultSet(w http.ResponseWriter, records []map[string]string) {
	if records == nil {
		records = []map[string]string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ResultSet": map[string]any{
			"totalRecords": strconv.Itoa(len(records)),
			"Result":       records,
		},
	})
}
