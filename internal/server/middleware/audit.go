package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/audit"
	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/audit/domain"
	auditrepo "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/audit/repository"
)

// Audit returns gin middleware that records an audit log entry after each request.
// Create is best-effort: failures are logged and do not fail the request. Only
// writes when user_id is set (authenticated context) and the request mutated state
// or the route is explicitly audited (GETs are skipped).
func Audit(auditRepo auditrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if auditRepo == nil {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}
		userID, _ := GetUserID(c.Request.Context())
		if userID == "" {
			return
		}
		ar := audit.ParseRoute(c.Request.Method, c.FullPath())
		entry := &domain.AuditLog{
			ID:        uuid.New().String(),
			UserID:    userID,
			Action:    ar.Action,
			Resource:  ar.Resource,
			IP:        c.ClientIP(),
			Metadata:  "",
			CreatedAt: time.Now().UTC(),
		}
		if err := auditRepo.Create(c.Request.Context(), entry); err != nil {
			log.Printf("audit: failed to create audit log: %v", err)
		}
	}
}
