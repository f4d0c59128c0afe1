package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/tutor_marketplace/services"
)

// ExpireStaleBookings cancels Pending bookings whose session has already
// started without being confirmed.
func ExpireStaleBookings(ctx context.Context, bookings *services.BookingService, now func() time.Time) func() {
	return func() {
		log.Println("Running job: ExpireStaleBookings...")

		n, err := bookings.ExpireStaleBookings(ctx, now())
		if err != nil {
			log.Printf("Error expiring stale bookings: %v", err)
			return
		}
		if n == 0 {
			log.Println("No stale bookings found.")
			return
		}
		log.Printf("Canceled %d stale booking(s).", n)
	}
}
