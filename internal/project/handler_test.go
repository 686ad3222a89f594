package project_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	"github.com/frahmantamala/revolv-ledger/internal/project"
	"github.com/frahmantamala/revolv-ledger/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Project Handler", func() {
	var (
		mockRepo *MockRepository
		router   *chi.Mux
	)

	serve := func(method, target string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := project.NewHandler(transport.NewBaseHandler(logger), project.NewService(mockRepo, logger))

		router = chi.NewRouter()
		router.Post("/projects", handler.CreateProject)
		router.Get("/projects", handler.ListProjects)
		router.Get("/projects/{id}", handler.GetProject)
		router.Patch("/projects/{id}/propose", handler.ProposeProject)
		router.Patch("/projects/{id}/deny", handler.DenyProject)
		router.Patch("/projects/{id}/approve", handler.ApproveProject)
		router.Patch("/projects/{id}/unapprove", handler.UnapproveProject)
		router.Patch("/projects/{id}/complete", handler.CompleteProject)
		router.Patch("/projects/{id}/incomplete", handler.MarkProjectIncomplete)
	})

	It("should create a project", func() {
		rec := serve(http.MethodPost, "/projects", []byte(`{"title":"Library Rooftop","funding_goal":"750.5"}`))
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var resp project.ProjectResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal("DR"))
		Expect(resp.FundingGoal).To(Equal("750.50"))
	})

	It("should reject an invalid body", func() {
		rec := serve(http.MethodPost, "/projects", []byte(`{"title":`))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		rec = serve(http.MethodPost, "/projects", []byte(`{"title":"","funding_goal":"-1"}`))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should list projects by status", func() {
		mockRepo.AddProject(project.StatusActive)
		mockRepo.AddProject(project.StatusCompleted)

		rec := serve(http.MethodGet, "/projects?status=CO", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp project.ProjectsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Projects).To(HaveLen(1))
		Expect(resp.Projects[0].Status).To(Equal("CO"))

		rec = serve(http.MethodGet, "/projects?status=XX", nil)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should move a project through its lifecycle", func() {
		id := strconv.FormatInt(mockRepo.AddProject(project.StatusDrafted), 10)

		for _, step := range []string{"propose", "approve", "complete", "incomplete"} {
			rec := serve(http.MethodPatch, "/projects/"+id+"/"+step, nil)
			Expect(rec.Code).To(Equal(http.StatusOK), step)
		}

		rec := serve(http.MethodGet, "/projects/"+id, nil)
		var resp project.ProjectResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal("AC"))
	})

	It("should walk a project back through deny and unapprove", func() {
		id := strconv.FormatInt(mockRepo.AddProject(project.StatusDrafted), 10)

		for _, step := range []string{"propose", "deny", "propose", "approve", "unapprove"} {
			rec := serve(http.MethodPatch, "/projects/"+id+"/"+step, nil)
			Expect(rec.Code).To(Equal(http.StatusOK), step)
		}

		rec := serve(http.MethodGet, "/projects/"+id, nil)
		var resp project.ProjectResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal("PR"))

		Expect(serve(http.MethodPatch, "/projects/"+id+"/unapprove", nil).Code).To(Equal(http.StatusConflict))
	})

	It("should answer 409 for a forbidden transition and 404 for unknown ids", func() {
		id := strconv.FormatInt(mockRepo.AddProject(project.StatusDrafted), 10)
		Expect(serve(http.MethodPatch, "/projects/"+id+"/complete", nil).Code).To(Equal(http.StatusConflict))
		Expect(serve(http.MethodGet, "/projects/77", nil).Code).To(Equal(http.StatusNotFound))
		Expect(serve(http.MethodGet, "/projects/x", nil).Code).To(Equal(http.StatusBadRequest))
	})
})
