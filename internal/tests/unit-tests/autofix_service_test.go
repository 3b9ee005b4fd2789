package unit_tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"webforge/internal/services"
)

func waitForState(t *testing.T, svc *services.AutoFixService, want services.AutoFixState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("state never reached %s, stuck at %s", want, svc.State())
}

func TestAutoFix_FullCycle(t *testing.T) {
	triggered := make(chan string, 1)
	svc := services.NewAutoFixService(20*time.Millisecond, 20*time.Millisecond, func(reason string) error {
		triggered <- reason
		return nil
	})
	svc.Startup(context.Background())
	defer svc.Shutdown()

	assert.Equal(t, services.AutoFixIdle, svc.State())
	assert.True(t, svc.ReportCrash(1, "TypeError: x is undefined"))
	assert.Equal(t, services.AutoFixCountdown, svc.State())

	select {
	case reason := <-triggered:
		assert.Equal(t, "TypeError: x is undefined", reason)
	case <-time.After(2 * time.Second):
		t.Fatal("fix trigger never fired")
	}

	waitForState(t, svc, services.AutoFixCooldown)
	waitForState(t, svc, services.AutoFixIdle)
}

func TestAutoFix_ReportsDroppedWhileBusy(t *testing.T) {
	block := make(chan struct{})
	svc := services.NewAutoFixService(2*time.Millisecond, 50*time.Millisecond, func(reason string) error {
		<-block
		return nil
	})
	svc.Startup(context.Background())
	defer svc.Shutdown()

	assert.True(t, svc.ReportCrash(1, "crash one"))
	// Countdown holds exactly one pending report.
	assert.False(t, svc.ReportCrash(1, "crash two"))

	waitForState(t, svc, services.AutoFixInflight)
	assert.False(t, svc.ReportCrash(1, "crash three"))

	close(block)
	waitForState(t, svc, services.AutoFixCooldown)
	assert.False(t, svc.ReportCrash(1, "crash four"))

	waitForState(t, svc, services.AutoFixIdle)
	assert.True(t, svc.ReportCrash(1, "crash five"))
}

func TestAutoFix_CancelOnlyDuringCountdown(t *testing.T) {
	block := make(chan struct{})
	svc := services.NewAutoFixService(50*time.Millisecond, 50*time.Millisecond, func(reason string) error {
		<-block
		return nil
	})
	svc.Startup(context.Background())
	defer svc.Shutdown()

	assert.False(t, svc.Cancel(), "cancel in idle")

	assert.True(t, svc.ReportCrash(1, "crash"))
	assert.True(t, svc.Cancel(), "cancel in countdown")
	assert.Equal(t, services.AutoFixIdle, svc.State())

	// A cancelled countdown never fires.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, services.AutoFixIdle, svc.State())

	assert.True(t, svc.ReportCrash(1, "crash again"))
	waitForState(t, svc, services.AutoFixInflight)
	assert.False(t, svc.Cancel(), "cancel in inflight")
	close(block)
}

func TestAutoFix_TriggerErrorStillCoolsDown(t *testing.T) {
	svc := services.NewAutoFixService(2*time.Millisecond, 10*time.Millisecond, func(reason string) error {
		return assert.AnError
	})
	svc.Startup(context.Background())
	defer svc.Shutdown()

	assert.True(t, svc.ReportCrash(1, "crash"))
	waitForState(t, svc, services.AutoFixCooldown)
	waitForState(t, svc, services.AutoFixIdle)
}
