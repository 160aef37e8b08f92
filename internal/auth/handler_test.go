package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/account"
	"github.com/frahmantamala/shopfront/internal/core/role"
)

var _ = ginkgo.Describe("Auth HTTP", func() {
	var (
		handler  *Handler
		store    *fakeAccountStore
		verifier *fakeVerifier
		tokenGen *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		store = newFakeAccountStore()
		verifier = &fakeVerifier{assertion: &Assertion{Subject: "sub", Email: "user@example.com"}}
		tokenGen = NewJWTTokenGenerator("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
		handler = NewHandler(NewService(store, verifier, tokenGen, internal.IdentityConfig{GoogleClientID: "client"}, testLogger))
	})

	decode := func(rec *httptest.ResponseRecorder) map[string]any {
		var body map[string]any
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		return body
	}

	ginkgo.Describe("GoogleSignIn", func() {
		ginkgo.It("returns user, access and refresh", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/google/", strings.NewReader(`{"credential":"id-token"}`))

			handler.GoogleSignIn(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			body := decode(rec)
			gomega.Expect(body).To(gomega.HaveKey("user"))
			gomega.Expect(body).To(gomega.HaveKey("access"))
			gomega.Expect(body).To(gomega.HaveKey("refresh"))
			gomega.Expect(body["user"]).ToNot(gomega.HaveKey("google_sub"))
		})

		ginkgo.It("answers 400 with a message when the credential is missing", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/google/", strings.NewReader(`{}`))

			handler.GoogleSignIn(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(decode(rec)).To(gomega.HaveKeyWithValue("message", "Missing Google credential"))
		})

		ginkgo.It("answers 400 for malformed JSON", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/google/", strings.NewReader(`{"credential":`))

			handler.GoogleSignIn(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("token endpoints", func() {
		ginkgo.It("refreshes a token pair", func() {
			refresh, err := tokenGen.GenerateRefreshToken(&internal.User{ID: 1, Email: "user@example.com", Role: role.Consumer})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, _, err = store.UpsertFromIdentity(context.Background(), account.IdentityProfile{Subject: "sub", Email: "user@example.com"},
				func(string, role.Role) role.Role { return role.Consumer })
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/token/refresh/", strings.NewReader(`{"refresh":"`+refresh+`"}`))
			handler.RefreshToken(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(decode(rec)).To(gomega.HaveKey("access"))
		})

		ginkgo.It("requires the refresh field", func() {
			rec := httptest.NewRecorder()
			handler.RefreshToken(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token/refresh/", strings.NewReader(`{}`)))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("answers 401 for an invalid token on verify", func() {
			rec := httptest.NewRecorder()
			handler.VerifyToken(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token/verify/", strings.NewReader(`{"token":"nope"}`)))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("AuthMiddleware and RBAC", func() {
		var (
			rbac    *RBACAuthorization
			reached bool
			final   http.Handler
		)

		ginkgo.BeforeEach(func() {
			reached = false
			rbac = NewRBACAuthorization(testLogger)
			final = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusNoContent)
			})
		})

		signIn := func(email string) string {
			verifier.assertion = &Assertion{Subject: "sub-" + email, Email: email}
			result, err := handler.Service.SignInWithGoogle(context.Background(), GoogleSignInDTO{Credential: "id-token"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			return result.Access
		}

		serve := func(h http.Handler, token string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/users/", nil)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			h.ServeHTTP(rec, req)
			return rec
		}

		ginkgo.It("answers 401 without a bearer token", func() {
			rec := serve(handler.AuthMiddleware(rbac.RequireAdmin()(final)), "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("answers 403 with the admin message for consumers", func() {
			token := signIn("user@example.com")

			rec := serve(handler.AuthMiddleware(rbac.RequireAdmin()(final)), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decode(rec)).To(gomega.HaveKeyWithValue("message", MessageAdminRequired))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("lets consumers through the admin-or-consumer gate", func() {
			token := signIn("user@example.com")

			rec := serve(handler.AuthMiddleware(rbac.RequireAdminOrConsumer()(final)), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(reached).To(gomega.BeTrue())
		})

		ginkgo.It("answers 401 from the gate itself when no principal is present", func() {
			rec := serve(rbac.RequireAdminOrConsumer()(final), "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.DescribeTable("Allows",
		func(user *internal.User, roles []role.Role, expected bool) {
			gomega.Expect(Allows(user, roles...)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("anonymous", nil, []role.Role{role.Admin, role.Consumer}, false),
		ginkgo.Entry("admin on admin gate", &internal.User{ID: 1, Role: role.Admin}, []role.Role{role.Admin}, true),
		ginkgo.Entry("consumer on admin gate", &internal.User{ID: 1, Role: role.Consumer}, []role.Role{role.Admin}, false),
		ginkgo.Entry("consumer on shared gate", &internal.User{ID: 1, Role: role.Consumer}, []role.Role{role.Admin, role.Consumer}, true),
		ginkgo.Entry("unknown role", &internal.User{ID: 1, Role: "Guest"}, []role.Role{role.Admin, role.Consumer}, false),
	)
})
