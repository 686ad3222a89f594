package ledger_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/revolv-ledger/internal/auth"
	"github.com/frahmantamala/revolv-ledger/internal/ledger"
	"github.com/frahmantamala/revolv-ledger/internal/project"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newLedgerRouter(h *ledger.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/payments", h.RecordPayment)
	r.Get("/payments/{id}", h.GetPayment)
	r.Delete("/payments/{id}", h.DeletePayment)
	r.Get("/users/{id}/payments", h.UserPayments)
	r.Get("/users/{id}/donations", h.UserDonations)
	r.Get("/users/{id}/reinvestments", h.UserReinvestments)
	r.Get("/users/{id}/repayments", h.UserRepayments)
	r.Get("/users/{id}/pool", h.UserPool)
	r.Get("/projects/{id}/totals", h.ProjectTotals)
	r.Get("/projects/{id}/proportion/{userID}", h.ProjectProportion)
	r.Get("/stats/donors", h.DonorCount)
	r.Get("/admin/pools", h.ListPools)
	r.Post("/admin/repayments", h.CreateAdminRepayment)
	r.Get("/admin/repayments", h.ListAdminRepayments)
	r.Get("/admin/repayments/{id}", h.GetAdminRepayment)
	r.Delete("/admin/repayments/{id}", h.DeleteAdminRepayment)
	r.Post("/admin/reinvestments", h.CreateAdminReinvestment)
	r.Get("/admin/reinvestments", h.ListAdminReinvestments)
	r.Get("/admin/reinvestments/{id}", h.GetAdminReinvestment)
	r.Delete("/admin/reinvestments/{id}", h.DeleteAdminReinvestment)
	return r
}

func requestAs(user *auth.User, method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(auth.ContextWithUser(req.Context(), user))
	}
	return req
}

func decodeBody(rec *httptest.ResponseRecorder, dst interface{}) {
	Expect(json.Unmarshal(rec.Body.Bytes(), dst)).To(Succeed())
}

func errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(rec, &body)
	return body.Error.Code
}

var _ = Describe("Ledger Handler", func() {
	var (
		env    *ledgerEnv
		router *chi.Mux
		admin  *auth.User
		donorA *auth.User
		donorB *auth.User
	)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		env = newLedgerEnv(ledger.Config{})
		router = newLedgerRouter(ledger.NewHandler(env.service))
		admin = &auth.User{ID: adminID, Permissions: []string{auth.PermissionAdmin}}
		donorA = &auth.User{ID: userA}
		donorB = &auth.User{ID: userB}
	})

	Describe("POST /payments", func() {
		var p int64

		BeforeEach(func() {
			p = env.project(project.StatusActive)
		})

		It("should record an organic payment for the caller", func() {
			rec := serve(requestAs(donorA, http.MethodPost, "/payments", map[string]interface{}{
				"project_id": p,
				"amount":     "10.00",
				"kind":       "paypal",
			}))
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var resp ledger.PaymentResponse
			decodeBody(rec, &resp)
			Expect(resp.PayerID).To(Equal(userA))
			Expect(resp.EntrantID).To(Equal(userA))
			Expect(resp.Amount).To(Equal("10.00"))
			Expect(resp.Organic).To(BeTrue())
		})

		It("should ignore a spoofed entrant", func() {
			rec := serve(requestAs(donorA, http.MethodPost, "/payments", map[string]interface{}{
				"project_id": p,
				"entrant_id": adminID,
				"amount":     "10.00",
				"kind":       "credit",
			}))
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var resp ledger.PaymentResponse
			decodeBody(rec, &resp)
			Expect(resp.EntrantID).To(Equal(userA))
			Expect(resp.Organic).To(BeTrue())
		})

		It("should let admins record a non-organic payment for another payer", func() {
			rec := serve(requestAs(admin, http.MethodPost, "/payments", map[string]interface{}{
				"payer_id":   userB,
				"project_id": p,
				"amount":     "20.00",
				"kind":       "check",
			}))
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var resp ledger.PaymentResponse
			decodeBody(rec, &resp)
			Expect(resp.PayerID).To(Equal(userB))
			Expect(resp.EntrantID).To(Equal(adminID))
			Expect(resp.Organic).To(BeFalse())
		})

		It("should forbid users from paying for someone else", func() {
			rec := serve(requestAs(donorA, http.MethodPost, "/payments", map[string]interface{}{
				"payer_id":   userB,
				"project_id": p,
				"amount":     "20.00",
				"kind":       "check",
			}))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should reject a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString("{"))
			req = req.WithContext(auth.ContextWithUser(req.Context(), donorA))
			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject an unknown kind", func() {
			rec := serve(requestAs(donorA, http.MethodPost, "/payments", map[string]interface{}{
				"project_id": p,
				"amount":     "1.00",
				"kind":       "barter",
			}))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should require an authenticated caller", func() {
			rec := serve(requestAs(nil, http.MethodPost, "/payments", map[string]interface{}{
				"project_id": p,
				"amount":     "1.00",
				"kind":       "paypal",
			}))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("GET /payments/{id}", func() {
		It("should hide other users' payments", func() {
			p := env.project(project.StatusActive)
			payment := env.donate(userA, p, "5.00")

			rec := serve(requestAs(donorB, http.MethodGet, "/payments/"+itoa(payment.ID), nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))

			rec = serve(requestAs(donorA, http.MethodGet, "/payments/"+itoa(payment.ID), nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec = serve(requestAs(admin, http.MethodGet, "/payments/"+itoa(payment.ID), nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should reject a non-numeric id", func() {
			rec := serve(requestAs(donorA, http.MethodGet, "/payments/abc", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("admin repayments", func() {
		var done int64

		BeforeEach(func() {
			done = env.project(project.StatusCompleted)
			env.donate(userA, done, "10.00")
			env.donate(userB, done, "30.00")
		})

		It("should create, read and delete an admin repayment", func() {
			rec := serve(requestAs(admin, http.MethodPost, "/admin/repayments", map[string]interface{}{
				"project_id": done,
				"amount":     "100.00",
			}))
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created ledger.AdminRepaymentResponse
			decodeBody(rec, &created)
			Expect(created.AdminID).To(Equal(adminID))
			Expect(created.Amount).To(Equal("100.00"))
			Expect(created.Repayments).To(HaveLen(2))

			rec = serve(requestAs(admin, http.MethodGet, "/admin/repayments/"+itoa(created.ID), nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec = serve(requestAs(admin, http.MethodGet, "/admin/repayments?project_id="+itoa(done), nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var list struct {
				AdminRepayments []ledger.AdminRepaymentResponse `json:"admin_repayments"`
			}
			decodeBody(rec, &list)
			Expect(list.AdminRepayments).To(HaveLen(1))

			rec = serve(requestAs(donorA, http.MethodGet, "/users/1/pool", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var pool ledger.PoolResponse
			decodeBody(rec, &pool)
			Expect(pool.Pool).To(Equal("25.00"))

			rec = serve(requestAs(admin, http.MethodDelete, "/admin/repayments/"+itoa(created.ID), nil))
			Expect(rec.Code).To(Equal(http.StatusNoContent))

			rec = serve(requestAs(admin, http.MethodGet, "/admin/repayments/"+itoa(created.ID), nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("should refuse a project that is not completed", func() {
			active := env.project(project.StatusActive)
			rec := serve(requestAs(admin, http.MethodPost, "/admin/repayments", map[string]interface{}{
				"project_id": active,
				"amount":     "100.00",
			}))
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(errorCode(rec)).To(Equal("PROJECT_NOT_COMPLETE"))
		})

		It("should validate the body", func() {
			rec := serve(requestAs(admin, http.MethodPost, "/admin/repayments", map[string]interface{}{
				"project_id": 0,
				"amount":     "-1",
			}))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("admin reinvestments", func() {
		It("should charge pools and list them", func() {
			done := env.project(project.StatusCompleted)
			target := env.project(project.StatusActive)
			env.donate(userA, done, "10.00")
			env.donate(userB, done, "30.00")
			env.repay(done, "200.00")

			rec := serve(requestAs(admin, http.MethodPost, "/admin/reinvestments", map[string]interface{}{
				"project_id": target,
				"amount":     "100.00",
			}))
			Expect(rec.Code).To(Equal(http.StatusCreated))
			var created ledger.AdminReinvestmentResponse
			decodeBody(rec, &created)
			Expect(created.Payments).To(HaveLen(2))

			rec = serve(requestAs(admin, http.MethodGet, "/admin/pools", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var pools struct {
				Pools []ledger.PoolResponse `json:"pools"`
			}
			decodeBody(rec, &pools)
			Expect(pools.Pools).To(Equal([]ledger.PoolResponse{
				{UserID: userA, Pool: "25.00"},
				{UserID: userB, Pool: "75.00"},
			}))

			rec = serve(requestAs(admin, http.MethodDelete, "/payments/"+itoa(created.Payments[0].ID), nil))
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(errorCode(rec)).To(Equal("CANNOT_DELETE_DERIVED"))

			rec = serve(requestAs(donorB, http.MethodGet, "/users/2/reinvestments?project_id="+itoa(target), nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var spent struct {
				Reinvestments []ledger.PaymentResponse `json:"reinvestments"`
			}
			decodeBody(rec, &spent)
			Expect(spent.Reinvestments).To(HaveLen(1))
			Expect(spent.Reinvestments[0].Amount).To(Equal("75.00"))

			rec = serve(requestAs(admin, http.MethodDelete, "/admin/reinvestments/"+itoa(created.ID), nil))
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(env.pool(userB)).To(Equal("150.00"))
		})
	})

	Describe("user ledgers", func() {
		It("should forbid reading another user's ledger", func() {
			rec := serve(requestAs(donorA, http.MethodGet, "/users/2/payments", nil))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should let admins read any user's ledger", func() {
			p := env.project(project.StatusActive)
			env.donate(userB, p, "4.00")

			rec := serve(requestAs(admin, http.MethodGet, "/users/2/donations", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var body struct {
				Donations []ledger.PaymentResponse `json:"donations"`
			}
			decodeBody(rec, &body)
			Expect(body.Donations).To(HaveLen(1))
		})

		It("should reject a malformed organic filter", func() {
			rec := serve(requestAs(donorA, http.MethodGet, "/users/1/donations?organic=maybe", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should list repayments credited to the caller", func() {
			done := env.project(project.StatusCompleted)
			env.donate(userA, done, "10.00")
			env.repay(done, "7.00")

			rec := serve(requestAs(donorA, http.MethodGet, "/users/1/repayments", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var body struct {
				Repayments []ledger.RepaymentResponse `json:"repayments"`
			}
			decodeBody(rec, &body)
			Expect(body.Repayments).To(HaveLen(1))
			Expect(body.Repayments[0].Amount).To(Equal("7.00"))
		})
	})

	Describe("project statistics", func() {
		It("should report totals, proportions and donor counts", func() {
			p := env.project(project.StatusActive)
			env.donate(userA, p, "10.00")
			env.donate(userB, p, "30.00")

			rec := serve(requestAs(donorA, http.MethodGet, "/projects/"+itoa(p)+"/totals", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var totals ledger.ProjectTotalsResponse
			decodeBody(rec, &totals)
			Expect(totals.Donated).To(Equal("40.00"))
			Expect(totals.DonatedOrganically).To(Equal("40.00"))
			Expect(totals.AdminOriginated).To(Equal("0.00"))

			rec = serve(requestAs(donorA, http.MethodGet, "/projects/"+itoa(p)+"/proportion/1", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var prop ledger.ProportionResponse
			decodeBody(rec, &prop)
			Expect(prop.Proportion).To(Equal("0.25"))

			rec = serve(requestAs(donorA, http.MethodGet, "/stats/donors", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var count ledger.DonorCountResponse
			decodeBody(rec, &count)
			Expect(count.Count).To(Equal(int64(2)))
		})

		It("should return 404 for an unknown project", func() {
			rec := serve(requestAs(donorA, http.MethodGet, "/projects/999/totals", nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(errorCode(rec)).To(Equal("PROJECT_NOT_FOUND"))
		})
	})
})
