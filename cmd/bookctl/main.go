// Command bookctl is an interactive console client for the booking API:
// browse rooms, sign in, and walk a booking from date selection to
// confirmation.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	bookingapp "github.com/lodgely/bookingkit/internal/application/booking"
	"github.com/lodgely/bookingkit/internal/application/catalog"
	"github.com/lodgely/bookingkit/internal/application/session"
	domainbooking "github.com/lodgely/bookingkit/internal/domain/booking"
	domainid "github.com/lodgely/bookingkit/internal/domain/identity"
	"github.com/lodgely/bookingkit/internal/infrastructure/api"
	"github.com/lodgely/bookingkit/internal/infrastructure/config"
	identityprovider "github.com/lodgely/bookingkit/internal/infrastructure/identity"
	"github.com/lodgely/bookingkit/internal/infrastructure/logger"
	"github.com/lodgely/bookingkit/internal/infrastructure/telemetry"
)

const dateLayout = "2006-01-02"

type console struct {
	session    *session.Service
	catalog    *catalog.Service
	widget     *bookingapp.WidgetService
	myBookings *bookingapp.MyBookingsService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// The console owns stdout; logs go to stderr unless configured otherwise.
	logOutput := cfg.Log.Output
	if logOutput == "" || logOutput == "stdout" {
		logOutput = "stderr"
	}
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOutput,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	client, err := api.NewClient(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, log)
	if err != nil {
		log.Fatal("Failed to build API client", zap.Error(err))
	}
	provider, err := identityprovider.NewProvider(identityprovider.Config{
		BaseURL: cfg.API.IdentityURL,
		Timeout: cfg.API.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to build identity provider", zap.Error(err))
	}

	sessionSvc := session.NewService(provider, client, log)
	c := &console{
		session:    sessionSvc,
		catalog:    catalog.NewService(client, log),
		widget:     bookingapp.NewWidgetService(client, sessionSvc, log),
		myBookings: bookingapp.NewMyBookingsService(client, sessionSvc, log),
	}

	sessionSvc.Subscribe(func(user *domainid.User) {
		if user != nil {
			fmt.Printf("signed in as %s\n", user.Email)
		} else {
			fmt.Println("signed out")
		}
	})

	fmt.Printf("bookctl connected to %s (type 'help')\n", cfg.API.BaseURL)
	c.repl(ctx)
}

func (c *console) repl(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		if err := c.dispatch(ctx, cmd, args); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func (c *console) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		printHelp()
		return nil
	case "rooms":
		return c.cmdRooms(ctx, args)
	case "featured":
		return c.cmdFeatured(ctx, args)
	case "room":
		return c.cmdRoom(ctx, args)
	case "reviews":
		return c.cmdReviews(ctx)
	case "review":
		return c.cmdReview(ctx, args)
	case "dates":
		return c.cmdDates(args)
	case "book":
		return c.cmdBook()
	case "resume":
		return c.cmdResume()
	case "revise":
		return c.widget.ReviseDates()
	case "confirm":
		return c.cmdConfirm(ctx)
	case "register":
		return c.cmdRegister(ctx, args)
	case "login":
		return c.cmdLogin(ctx, args)
	case "logout":
		c.session.Logout(ctx)
		return nil
	case "whoami":
		return c.cmdWhoami()
	case "profile":
		return c.cmdProfile(ctx, args)
	case "bookings":
		return c.cmdBookings(ctx)
	case "cancel":
		return c.cmdCancel(ctx, args)
	case "reschedule":
		return c.cmdReschedule(ctx, args)
	case "reviewbooking":
		return c.cmdReviewBooking(ctx, args)
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func printHelp() {
	fmt.Println(`commands:
  rooms [minPrice] [maxPrice]      list rooms, optionally price-filtered
  featured [n]                     first n available rooms
  room <id>                        open a room and start the booking widget
  reviews                          show reviews for the opened room
  review <rating> <comment...>     post a review for the opened room
  dates <check-in> <check-out>     pick stay dates (YYYY-MM-DD)
  book                             request the booking confirmation
  resume                           continue a booking blocked on login
  revise                           go back to date selection
  confirm                          submit the confirmed booking
  register <email> <pw> [name]     create an account and sign in
  login <email> <pw>               sign in
  logout                           sign out
  whoami                           show the signed-in user
  profile <display name...>        update the display name
  bookings                         list my bookings
  cancel <bookingId>               cancel a booking
  reschedule <bookingId> <date>    move a booking's check-in day
  reviewbooking <bookingId> <rating> <comment...>
                                   review the room of a past stay
  quit`)
}

func (c *console) cmdRooms(ctx context.Context, args []string) error {
	var filter domainbooking.RoomFilter
	if len(args) > 0 {
		min, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("minPrice must be a number")
		}
		filter.MinPrice = &min
	}
	if len(args) > 1 {
		max, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("maxPrice must be a number")
		}
		filter.MaxPrice = &max
	}

	rooms, err := c.catalog.ListRooms(ctx, filter)
	if err != nil {
		return err
	}
	for _, room := range rooms {
		marker := " "
		if !room.IsAvailable {
			marker = "x"
		}
		fmt.Printf("[%s] %s  %s/night  %s\n", marker, room.ID, room.Price, room.Name)
	}
	return nil
}

func (c *console) cmdFeatured(ctx context.Context, args []string) error {
	n := 3
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("count must be a number")
		}
		n = parsed
	}
	rooms, err := c.catalog.FeaturedRooms(ctx, n)
	if err != nil {
		return err
	}
	for _, room := range rooms {
		fmt.Printf("%s  %s/night  %s\n", room.ID, room.Price, room.Name)
	}
	return nil
}

func (c *console) cmdRoom(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: room <id>")
	}
	room, err := c.widget.Load(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s/night\n%s\n", room.Name, room.Price, room.Description)
	if room.ReviewCount > 0 {
		fmt.Printf("rated %.1f across %d reviews\n", room.Rating, room.ReviewCount)
	}
	if !room.IsAvailable {
		fmt.Println("this room is currently not available for booking")
	}
	return nil
}

func (c *console) cmdReviews(ctx context.Context) error {
	reviews, err := c.widget.LoadReviews(ctx)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Println("no reviews yet")
		return nil
	}
	for _, r := range reviews {
		fmt.Printf("%d/5 by %s: %s\n", r.Rating, r.UserEmail, r.Comment)
	}
	return nil
}

func (c *console) cmdReview(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: review <rating> <comment...>")
	}
	rating, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("rating must be a number")
	}
	if err := c.widget.PostReview(ctx, rating, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Println("review posted")
	return nil
}

func (c *console) cmdDates(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: dates <check-in> <check-out> (YYYY-MM-DD)")
	}
	checkIn, err := time.Parse(dateLayout, args[0])
	if err != nil {
		return fmt.Errorf("check-in date must look like 2025-06-01")
	}
	checkOut, err := time.Parse(dateLayout, args[1])
	if err != nil {
		return fmt.Errorf("check-out date must look like 2025-06-03")
	}
	if err := c.widget.PickDates(checkIn, checkOut); err != nil {
		return err
	}
	fmt.Println("dates set")
	return nil
}

func (c *console) cmdBook() error {
	if err := c.widget.RequestBooking(); err != nil {
		if c.widget.ResumePending() {
			fmt.Println("log in, then type 'resume' to continue this booking")
		}
		return err
	}
	return c.printSummary()
}

func (c *console) cmdResume() error {
	if err := c.widget.ResumeAfterLogin(); err != nil {
		return err
	}
	return c.printSummary()
}

func (c *console) printSummary() error {
	summary, err := c.widget.Summary()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s x %d nights = %s\ntype 'confirm' to book or 'revise' to change dates\n",
		summary.RoomName, summary.NightlyPrice, summary.Nights, summary.Total)
	return nil
}

func (c *console) cmdConfirm(ctx context.Context) error {
	if err := c.widget.ConfirmBooking(ctx); err != nil {
		return err
	}
	fmt.Println("Room booked successfully!")
	return nil
}

func (c *console) cmdRegister(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: register <email> <password> [display name...]")
	}
	displayName := strings.Join(args[2:], " ")
	_, err := c.session.Register(ctx, args[0], args[1], displayName)
	return err
}

func (c *console) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	_, err := c.session.Login(ctx, args[0], args[1])
	return err
}

func (c *console) cmdWhoami() error {
	user, ok := c.session.CurrentUser()
	if !ok {
		fmt.Println("not signed in")
		return nil
	}
	if user.DisplayName != "" {
		fmt.Printf("%s (%s)\n", user.DisplayName, user.Email)
	} else {
		fmt.Println(user.Email)
	}
	return nil
}

func (c *console) cmdProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: profile <display name...>")
	}
	name := strings.Join(args, " ")
	_, err := c.session.UpdateProfile(ctx, domainid.ProfilePatch{DisplayName: &name})
	if err != nil {
		return err
	}
	fmt.Println("profile updated")
	return nil
}

func (c *console) cmdBookings(ctx context.Context) error {
	items, err := c.myBookings.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no bookings")
		return nil
	}
	for _, item := range items {
		name := item.Booking.RoomID
		if item.Room != nil {
			name = item.Room.Name
		}
		fmt.Printf("%s  %s  %s -> %s\n",
			item.Booking.ID, name,
			item.Booking.CheckIn.Format(dateLayout),
			item.Booking.CheckOut.Format(dateLayout))
	}
	return nil
}

func (c *console) cmdCancel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cancel <bookingId>")
	}
	if err := c.myBookings.Cancel(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("booking cancelled")
	return nil
}

func (c *console) cmdReviewBooking(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: reviewbooking <bookingId> <rating> <comment...>")
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rating must be a number")
	}
	if err := c.myBookings.SubmitReviewForBooking(ctx, args[0], rating, strings.Join(args[2:], " ")); err != nil {
		return err
	}
	fmt.Println("review posted")
	return nil
}

func (c *console) cmdReschedule(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: reschedule <bookingId> <date>")
	}
	newDate, err := time.Parse(dateLayout, args[1])
	if err != nil {
		return fmt.Errorf("date must look like 2025-06-01")
	}
	if err := c.myBookings.Reschedule(ctx, args[0], newDate); err != nil {
		return err
	}
	fmt.Println("booking rescheduled")
	return nil
}
