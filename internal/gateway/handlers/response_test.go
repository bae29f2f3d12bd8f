package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/database"
	"fieldforce-system/internal/services"
	"fieldforce-system/internal/workflow"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		q     ListQuery
		want  []int
		pages int
	}{
		{ListQuery{Page: 1, PageSize: 2}, []int{1, 2}, 3},
		{ListQuery{Page: 3, PageSize: 2}, []int{5}, 3},
		{ListQuery{Page: 4, PageSize: 2}, []int{}, 3},
		{ListQuery{Page: 0, PageSize: 0}, []int{1, 2, 3, 4, 5}, 1},
	}
	for _, tt := range tests {
		got, meta := paginate(items, tt.q)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) || meta.TotalPages != tt.pages || meta.Total != 5 {
			t.Errorf("paginate(%+v) = %v %+v", tt.q, got, meta)
		}
	}
}

func TestWriteErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		want int
	}{
		{access.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("get: %w", database.ErrNotFound), http.StatusNotFound},
		{workflow.ErrAlreadyReviewed, http.StatusConflict},
		{services.ErrLocationUnavailable, http.StatusConflict},
		{services.ErrFingerprintRequired, http.StatusBadRequest},
		{&services.ValidationError{Message: "Password must be at least 6 characters"}, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		writeError(c, tt.err)
		if w.Code != tt.want {
			t.Errorf("writeError(%v) status = %d, want %d", tt.err, w.Code, tt.want)
		}
		var resp APIResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Success {
			t.Errorf("writeError(%v) body = %s", tt.err, w.Body.String())
		}
	}
}
