package signals

import (
	"context"
	"os"
	"syscall"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("signal handling", func() {
	ginkgo.BeforeEach(func() {
		signalHandlersMutex.Lock()
		saved := signalHandlers
		signalHandlers = nil
		signalHandlersMutex.Unlock()
		ginkgo.DeferCleanup(func() {
			signalHandlersMutex.Lock()
			signalHandlers = saved
			signalHandlersMutex.Unlock()
		})
	})

	ginkgo.It("runs the handlers in order and exits cleanly", func() {
		var calls []int
		RegisterGracefulTerminationHandler(func() { calls = append(calls, 1) })
		RegisterGracefulTerminationHandler(func() { calls = append(calls, 2) })

		c := make(chan os.Signal, 1)
		exitCode := make(chan int, 1)
		c <- syscall.SIGTERM
		signalHandler(c, func(code int) { exitCode <- code })

		Expect(calls).To(Equal([]int{1, 2}))
		Expect(exitCode).To(Receive(Equal(0)))
	})

	ginkgo.It("cancels contexts on termination without exiting", func() {
		c := make(chan os.Signal, 1)
		released := false
		ctx, stop := notifyContext(context.Background(), c, func() { released = true })
		ginkgo.DeferCleanup(stop)
		Expect(ctx.Err()).ToNot(HaveOccurred())

		c <- syscall.SIGINT
		Eventually(ctx.Done()).Should(BeClosed())
		Expect(ctx.Err()).To(MatchError(context.Canceled))
		Expect(context.Cause(ctx)).To(MatchError(ContainSubstring("interrupt")))
		Expect(released).To(BeFalse())
	})

	ginkgo.It("releases the registration when stopped", func() {
		released := false
		ctx, stop := notifyContext(context.Background(), make(chan os.Signal), func() { released = true })
		stop()

		Expect(released).To(BeTrue())
		Expect(ctx.Err()).To(MatchError(context.Canceled))
	})
})
