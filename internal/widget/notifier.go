package widget

import "time"

// runNotifier is the single timer of a mounted widget. It reads the open
// state when it fires instead of being recreated on every toggle.
func (w *Widget) runNotifier() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.notifyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.lifetime.Done():
			return
		case <-ticker.C:
			w.notify()
		}
	}
}

// notify shows the indicator while collapsed and arms its hide timer.
func (w *Widget) notify() {
	w.mu.Lock()
	if w.state.Open || w.unmounted {
		w.mu.Unlock()
		return
	}
	w.state.Notification = true
	w.stopHideTimerLocked()
	gen := w.hideGen
	w.hideTimer = time.AfterFunc(w.notifyDuration, func() { w.hideNotification(gen) })
	w.mu.Unlock()
	w.signal()
}

func (w *Widget) hideNotification(gen uint64) {
	w.mu.Lock()
	if gen != w.hideGen || !w.state.Notification {
		w.mu.Unlock()
		return
	}
	w.state.Notification = false
	w.hideTimer = nil
	w.mu.Unlock()
	w.signal()
}

// stopHideTimerLocked invalidates any pending hide. Callers hold w.mu.
func (w *Widget) stopHideTimerLocked() {
	w.hideGen++
	if w.hideTimer != nil {
		w.hideTimer.Stop()
		w.hideTimer = nil
	}
}
