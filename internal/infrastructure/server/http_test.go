package server

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestHTTPServer_StartStop(t *testing.T) {
	srv := NewHTTPServer(Options{Addr: "127.0.0.1:0"}, http.NewServeMux())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		t.Fatalf("Failed to stop server: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start should return nil after a clean shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestHTTPServer_StartFailsOnBadAddr(t *testing.T) {
	srv := NewHTTPServer(Options{Addr: "not-an-address"}, http.NewServeMux())

	if err := srv.Start(context.Background()); err == nil {
		t.Error("Expected an error for an unbindable address")
	}
}

func TestOptions_Defaults(t *testing.T) {
	var opts Options
	opts.applyDefaults()

	if opts.Addr != ":8080" {
		t.Errorf("Expected default addr :8080, got %s", opts.Addr)
	}
	if opts.ReadHeaderTimeout != 10*time.Second {
		t.Errorf("Expected 10s read header timeout, got %v", opts.ReadHeaderTimeout)
	}
	if opts.IdleTimeout != 120*time.Second {
		t.Errorf("Expected 120s idle timeout, got %v", opts.IdleTimeout)
	}
}
