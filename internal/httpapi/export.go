package httpapi

import (
	"encoding/csv"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.com/arcanecrypto/noded/internal/apierr"
	"gitlab.com/arcanecrypto/noded/internal/store"
)

type exportResponse struct {
	Path string `json:"path"`
}

// export streams the completed-payment history within an optional
// [from, to) window to a CSV file under the configured exports
// directory, and responds with the resulting path.
func (s *Server) export(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	if err := os.MkdirAll(s.config.ExportsDir, 0o755); err != nil {
		apierr.Internal(c, err)
		return
	}

	path := filepath.Join(s.config.ExportsDir, "export-"+strconv.FormatInt(time.Now().Unix(), 10)+".csv")
	file, err := os.Create(path)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"kind", "id", "amountSat", "completedAt"}); err != nil {
		apierr.Internal(c, err)
		return
	}

	visitErr := s.store.StreamCompletedPayments(from, to, func(p store.CompletedPayment) error {
		return writer.Write([]string{
			p.Kind,
			p.ID,
			strconv.FormatInt(p.AmountSat, 10),
			p.CompletedAt.UTC().Format(time.RFC3339),
		})
	})
	if visitErr != nil {
		apierr.Internal(c, visitErr)
		return
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		apierr.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, exportResponse{Path: path})
}
