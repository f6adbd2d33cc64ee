package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	auction "auction-marketplace/internal/auctionService"
	model "auction-marketplace/internal/models"
	repository "auction-marketplace/internal/repository"
)

const ownerID = "owner"

func newListing(b *testing.B, svc *auction.AuctionService, title string, startingBid model.Money) string {
	b.Helper()
	listing, err := svc.CreateListing(context.Background(), ownerID, auction.NewListing{
		Title:       title,
		Description: "Benchmark listing",
		StartingBid: startingBid,
	})
	if err != nil {
		b.Fatalf("failed to create listing: %v", err)
	}
	return listing.ListingID
}

// Benchmark 1: PlaceBid - Isolated Listings (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	svc := auction.NewAuctionService(repository.NewMemoryRepo())
	ctx := context.Background()

	listingIDs := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		listingIDs[i] = newListing(b, svc, fmt.Sprintf("Low-Contention Listing %d", i), 5000)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		bidderID := fmt.Sprintf("user_%d", i)
		amount := model.Money(5000 + rand.Intn(10000))
		if _, err := svc.PlaceBid(ctx, listingIDs[i], bidderID, amount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Listing (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedListing(b *testing.B) {
	svc := auction.NewAuctionService(repository.NewMemoryRepo())
	ctx := context.Background()
	listingID := newListing(b, svc, "High-Contention Listing", 5000)

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 5000
	var accepted, rejected int64

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			bidderID := fmt.Sprintf("user_parallel_%d", rnd.Int())

			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			if _, err := svc.PlaceBid(ctx, listingID, bidderID, model.Money(nextBid)); err != nil {
				atomic.AddInt64(&rejected, 1)
				continue
			}
			atomic.AddInt64(&accepted, 1)
		}
	})

	b.ReportMetric(float64(rejected)/float64(b.N), "rejected/op")
}

// Benchmark 3: HighestBid - Single - Threaded (Low Contention)
func Benchmark_HighestBid_SingleThreaded(b *testing.B) {
	svc := auction.NewAuctionService(repository.NewMemoryRepo())
	ctx := context.Background()

	listingIDs := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		listingIDs[i] = newListing(b, svc, fmt.Sprintf("Low-Contention Listing %d", i), 5000)
		for j := 0; j < 10; j++ {
			bidderID := fmt.Sprintf("user_%d_%d", i, j)
			_, _ = svc.PlaceBid(ctx, listingIDs[i], bidderID, model.Money(5000+j*100))
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.HighestBid(ctx, listingIDs[i]); err != nil {
			b.Fatalf("failed to get highest bid: %v", err)
		}
	}
}

// Benchmark 4: HighestBid - Concurrent (High Contention)
func Benchmark_HighestBid_ConcurrentSharedListing(b *testing.B) {
	svc := auction.NewAuctionService(repository.NewMemoryRepo())
	ctx := context.Background()
	listingID := newListing(b, svc, "High-Contention Listing", 5000)

	for j := 0; j < 100; j++ {
		bidderID := fmt.Sprintf("user_%d", j)
		_, _ = svc.PlaceBid(ctx, listingID, bidderID, model.Money(5000+j))
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.HighestBid(ctx, listingID); err != nil {
				b.Errorf("failed to get highest bid: %v", err)
				return
			}
		}
	})
}

// Benchmark 5: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedListing(b *testing.B) {
	svc := auction.NewAuctionService(repository.NewMemoryRepo())
	ctx := context.Background()
	listingID := newListing(b, svc, "Shared Listing", 5000)

	for j := 0; j < 50; j++ {
		bidderID := fmt.Sprintf("user_seed_%d", j)
		_, _ = svc.PlaceBid(ctx, listingID, bidderID, model.Money(5000+j*2))
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 5100

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if rnd.Intn(10) < 3 {
				bidderID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(ctx, listingID, bidderID, model.Money(nextBid))
				continue
			}
			_, _ = svc.HighestBid(ctx, listingID)
		}
	})
}
