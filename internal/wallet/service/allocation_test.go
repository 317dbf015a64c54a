package service

import (
	"context"
	"testing"

	"github.com/showgrid/showgrid/internal/wallet/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateDebitsWallet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 100)

	alloc, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID,
		UserID:   testUserID,
		TicketID: testTicketID,
		Quantity: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), alloc.AllocatedQuantity)
	assert.Equal(t, int64(40), alloc.AvailableQuantity)

	wallet, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), wallet.TicketBalance)
}

func TestAllocateInsufficientBalanceLeavesNoRow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 10)

	_, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID,
		UserID:   testUserID,
		TicketID: testTicketID,
		Quantity: 11,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = svc.GetAllocation(ctx, testTenantID, testUserID, testTicketID)
	assert.ErrorIs(t, err, domain.ErrAllocationNotFound)
}

func TestAllocateTopsUpExistingRow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 100)

	_, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 30,
	})
	require.NoError(t, err)

	alloc, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), alloc.AllocatedQuantity)
	assert.Equal(t, int64(50), alloc.AvailableQuantity)
}

func TestUpdateAllocationIncrease(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 100)
	_, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 10,
	})
	require.NoError(t, err)

	alloc, err := svc.UpdateAllocation(ctx, domain.UpdateAllocationRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, NewQuantity: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), alloc.AllocatedQuantity)
	assert.Equal(t, int64(25), alloc.AvailableQuantity)

	wallet, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(75), wallet.TicketBalance)
}

func TestUpdateAllocationDecreaseRefundsDifference(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 100)
	_, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 10,
	})
	require.NoError(t, err)

	alloc, err := svc.UpdateAllocation(ctx, domain.UpdateAllocationRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, NewQuantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), alloc.AllocatedQuantity)
	assert.Equal(t, int64(4), alloc.AvailableQuantity)

	wallet, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(96), wallet.TicketBalance)
}

func TestUpdateAllocationDecreaseCapsCreditAtAvailable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 100)
	_, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 10,
	})
	require.NoError(t, err)

	// Viewers already consumed 7 of the 10; only 3 remain refundable.
	_, err = svc.ConsumeAllocated(ctx, testTenantID, testUserID, testTicketID, 7)
	require.NoError(t, err)

	alloc, err := svc.UpdateAllocation(ctx, domain.UpdateAllocationRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, NewQuantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), alloc.AllocatedQuantity)
	assert.Equal(t, int64(0), alloc.AvailableQuantity)

	wallet, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(93), wallet.TicketBalance)
}

func TestUpdateAllocationNoChange(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 50)
	_, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 20,
	})
	require.NoError(t, err)

	alloc, err := svc.UpdateAllocation(ctx, domain.UpdateAllocationRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, NewQuantity: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), alloc.AllocatedQuantity)

	wallet, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), wallet.TicketBalance)
}

func TestUpdateAllocationMissingRow(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateAllocation(context.Background(), domain.UpdateAllocationRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, NewQuantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrAllocationNotFound)
}

func TestReleaseAllocationRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 100)
	_, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 40,
	})
	require.NoError(t, err)

	result, err := svc.ReleaseAllocation(ctx, testTenantID, testUserID, testTicketID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), result.ReleasedQuantity)
	assert.Equal(t, int64(100), result.Wallet.TicketBalance)

	_, err = svc.GetAllocation(ctx, testTenantID, testUserID, testTicketID)
	assert.ErrorIs(t, err, domain.ErrAllocationNotFound)
}

func TestConsumeAllocated(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 100)
	_, err := svc.Allocate(ctx, domain.AllocateRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 10,
	})
	require.NoError(t, err)

	alloc, err := svc.ConsumeAllocated(ctx, testTenantID, testUserID, testTicketID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(10), alloc.AllocatedQuantity)
	assert.Equal(t, int64(6), alloc.AvailableQuantity)

	_, err = svc.ConsumeAllocated(ctx, testTenantID, testUserID, testTicketID, 7)
	assert.ErrorIs(t, err, domain.ErrInsufficientAllocation)

	// The wallet balance is untouched by allocation consumption.
	wallet, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), wallet.TicketBalance)
}
