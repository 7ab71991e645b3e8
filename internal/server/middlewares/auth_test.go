package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blinky-companion/sync-agent/internal/server/middlewares"
)

func sign(secret []byte, method jwt.SigningMethod, expires time.Time) string {
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   "shell",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	s, err := token.SignedString(secret)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Auth", func() {
	var (
		secret []byte
		router *gin.Engine
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		secret = []byte("0123456789abcdef0123456789abcdef")
		router = gin.New()
		router.Use(middlewares.Auth(secret))
		router.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString("subject"))
		})
	})

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// Given a token signed with the shared secret
	// When calling a protected route
	// Then the request passes with the token subject
	It("should accept a valid token", func() {
		w := do("Bearer " + sign(secret, jwt.SigningMethodHS256, time.Now().Add(time.Hour)))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("shell"))
	})

	It("should reject a missing header", func() {
		Expect(do("").Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject an expired token", func() {
		w := do("Bearer " + sign(secret, jwt.SigningMethodHS256, time.Now().Add(-time.Minute)))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject a token signed with another secret", func() {
		w := do("Bearer " + sign([]byte("another-secret-another-secret-!!"), jwt.SigningMethodHS256, time.Now().Add(time.Hour)))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject other signing methods", func() {
		w := do("Bearer " + sign(secret, jwt.SigningMethodHS512, time.Now().Add(time.Hour)))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})

var _ = Describe("LoadSecret", func() {
	It("should trim the secret file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "jwt.secret")
		Expect(os.WriteFile(path, []byte("  s3cret\n"), 0600)).To(Succeed())

		secret, err := middlewares.LoadSecret(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(secret)).To(Equal("s3cret"))
	})

	It("should reject an empty file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "jwt.secret")
		Expect(os.WriteFile(path, []byte("\n"), 0600)).To(Succeed())

		_, err := middlewares.LoadSecret(path)
		Expect(err).To(HaveOccurred())
	})
})
