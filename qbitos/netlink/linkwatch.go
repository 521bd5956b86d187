package netlink

import "qbit/qbitos/event"

// watchLink polls the WiFi link, mirrors it into the connectivity register,
// and (re)opens the provisioning portal when the link stays down past the
// threshold.
func (t *Task) watchLink(stop <-chan struct{}) {
	const portalAfterMs = 15000

	up := t.link.Up()
	if up {
		t.conn.Set(event.BitWifi)
	}
	var downForMs uint64

	for {
		select {
		case <-stop:
			return
		default:
		}

		cur := t.link.Up()
		if cur != up {
			up = cur
			if up {
				t.conn.Set(event.BitWifi)
				if t.link.PortalActive() {
					t.link.StopPortal()
				}
				t.conn.Clear(event.BitPortal)
			} else {
				t.conn.Clear(event.BitWifi)
			}
			downForMs = 0
			t.out.SendOrRelease(event.NetworkEvent{Kind: event.WifiStatus, Connected: up})
		}

		if !up {
			if downForMs >= portalAfterMs && !t.link.PortalActive() {
				t.logf("netlink: link down %dms, starting portal", downForMs)
				t.link.StartPortal()
				t.conn.Set(event.BitPortal)
			}
			downForMs += linkPollMs
		}
		if t.link.PortalActive() {
			t.conn.Set(event.BitPortal)
		}

		sleepMs(linkPollMs, stop)
	}
}
