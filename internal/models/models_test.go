package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDefaults(t *testing.T) {
	db := SetupTestDB(t)

	client := &Client{Name: "Acme Pty Ltd"}
	require.NoError(t, db.Create(client).Error)

	assert.NotEmpty(t, client.ID)
	assert.Equal(t, ClientStatusActive, client.Status)
	assert.Equal(t, DateOnly(time.Now()), client.DateAdded)
	assert.Zero(t, client.TotalCalls)
}

func TestClientKeepsProvidedID(t *testing.T) {
	db := SetupTestDB(t)

	client := &Client{ID: "fixed-id", Name: "Acme"}
	require.NoError(t, db.Create(client).Error)
	assert.Equal(t, "fixed-id", client.ID)
}

func TestCustomerDefaults(t *testing.T) {
	db := SetupTestDB(t)

	customer := &Customer{Name: "Jordan", Phone: "+61412345678"}
	require.NoError(t, db.Create(customer).Error)

	assert.NotEmpty(t, customer.ID)
	assert.Equal(t, CustomerStatusPending, customer.Status)
	assert.NotEmpty(t, customer.ImportTime)
}

func TestCallLogUniqueProviderCallID(t *testing.T) {
	db := SetupTestDB(t)

	first := &CallLog{Phone: "+61412345678", ProviderCallID: "call-1"}
	require.NoError(t, db.Create(first).Error)

	dup := &CallLog{Phone: "+61412345678", ProviderCallID: "call-1"}
	assert.Error(t, db.Create(dup).Error, "a session id maps to exactly one log entry")
}

func TestRecordIDUnique(t *testing.T) {
	a, b := RecordID(), RecordID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
