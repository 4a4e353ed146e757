package service

import (
	"encoding/json"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIDs(t *testing.T) {
	var hits []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[{"id":4,"name":"TCG"},{"id":12}]`), &hits))

	ids, err := decodeIDs(hits)
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 12}, ids)

	ids, err = decodeIDs([]interface{}{map[string]interface{}{"id": 7.0}})
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, ids)
}

func TestCleanText(t *testing.T) {
	s := &meiliSearchService{sanitizer: bluemonday.StrictPolicy()}
	assert.Equal(t, "Les parcs & hôtels", s.cleanText("<b>Les parcs</b>   &amp; hôtels"))
}
