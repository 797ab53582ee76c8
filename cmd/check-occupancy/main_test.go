package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"hostel-portal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAuditor struct {
	rows []repository.OccupancyRow
	err  error
}

func (s stubAuditor) AuditOccupancy(context.Context) ([]repository.OccupancyRow, error) {
	return s.rows, s.err
}

var sample = []repository.OccupancyRow{
	{RoomNumber: "A-101", Capacity: 2, OccupiedCount: 1, Allotted: 1},
	{RoomNumber: "A-102", Capacity: 2, OccupiedCount: 2, Allotted: 1},
	{RoomNumber: "A-103", Capacity: 1, OccupiedCount: 0, Allotted: 0},
}

func TestDriftOnly(t *testing.T) {
	drift := driftOnly(sample)
	require.Len(t, drift, 1)
	assert.Equal(t, "A-102", drift[0].RoomNumber)
	assert.Empty(t, driftOnly(nil))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, sample))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ROOM"))
	assert.True(t, strings.HasSuffix(lines[1], "yes"))
	assert.True(t, strings.HasSuffix(lines[2], "NO"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sample[:1]))
	assert.JSONEq(t, `[{"roomNumber":"A-101","capacity":2,"occupiedCount":1,"allotted":1}]`, buf.String())
}

func TestReport_ExitCodes(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	var buf bytes.Buffer
	assert.Equal(t, exitDrift, report(ctx, stubAuditor{rows: sample}, &buf, false, false, log))
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 4)

	buf.Reset()
	assert.Equal(t, exitDrift, report(ctx, stubAuditor{rows: sample}, &buf, true, true, log))
	assert.JSONEq(t, `[{"roomNumber":"A-102","capacity":2,"occupiedCount":2,"allotted":1}]`, buf.String())

	buf.Reset()
	assert.Equal(t, 0, report(ctx, stubAuditor{rows: sample[:1]}, &buf, false, false, log))

	buf.Reset()
	assert.Equal(t, 1, report(ctx, stubAuditor{err: errors.New("connection reset")}, &buf, false, false, log))
	assert.Empty(t, buf.String())
}
