package utils

import (
	"log"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"lms/services"
)

// logSweeper logs sweeper events with timestamp
func logSweeper(message string) {
	log.Printf("[CERT-SWEEPER %s] %s", time.Now().Format(time.RFC3339), message)
}

// StartCertificateSweeper runs the reconcile job on the configured cron
// schedule. It re-issues certificates for learners whose completion event
// fired while issuance was unavailable; issuance is idempotent so overlap
// with the synchronous path is harmless.
func StartCertificateSweeper(certs *services.CertificateService, schedule string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		issued, err := certs.SweepMissing()
		if err != nil {
			logSweeper("Error reconciling certificates: " + err.Error())
			return
		}
		if issued > 0 {
			logSweeper("Issued " + strconv.Itoa(issued) + " missing certificate(s)")
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logSweeper("Certificate sweeper started with schedule " + schedule)
	return c, nil
}
