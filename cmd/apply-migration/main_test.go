package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	sql := `-- header
CREATE TABLE a (id TEXT);

-- only a comment;
CREATE INDEX a_idx ON a (id);
`
	got := splitStatements(sql)
	assert.Equal(t, []string{"CREATE TABLE a (id TEXT)", "CREATE INDEX a_idx ON a (id)"}, got)
}
