package response

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorOmitsData(t *testing.T) {
	raw, err := json.Marshal(Error(http.StatusNotFound, "customer: not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","status_code":404,"error":"customer: not found"}`, string(raw))
}

func TestPaged(t *testing.T) {
	raw, err := json.Marshal(Paged(http.StatusOK, []string{"a"}, 41, 3, 20))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","status_code":200,"data":{"items":["a"],"total":41,"page":3,"limit":20}}`, string(raw))
}
