package health

import "time"

// Common health check functions

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// DatabaseCheck creates a health check for database connectivity
func DatabaseCheck(pingFunc func() error) CheckFunc {
	return func() Check {
		check := Check{
			Name: "database",
		}

		if err := pingFunc(); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Connected"
		}

		return check
	}
}

// QueueCheck creates a health check for the pending payments queue
// backlog (pkg/queue). A deep backlog signals the Payment Processor is
// falling behind upstream submission.
func QueueCheck(getDepth func() int, degradedAt, unhealthyAt int) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "pending_queue",
			Details: make(map[string]any),
		}

		depth := getDepth()
		check.Details["depth"] = depth

		switch {
		case depth >= unhealthyAt:
			check.Status = StatusUnhealthy
			check.Message = "pending queue backlog critical"
		case depth >= degradedAt:
			check.Status = StatusDegraded
			check.Message = "pending queue backlog growing"
		default:
			check.Status = StatusHealthy
			check.Message = "pending queue nominal"
		}

		return check
	}
}

// GatewayCheck creates a health check reporting which upstream gateway
// is currently preferred and whether either upstream is failing
// (pkg/chooser). Both upstreams failing is reported degraded, not
// unhealthy — the system still serves intake by design, it just has no
// healthy upstream to submit to right now.
func GatewayCheck(getState func() (current string, defaultFailing, fallbackFailing bool)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "gateway_chooser",
			Details: make(map[string]any),
		}

		current, defaultFailing, fallbackFailing := getState()
		check.Details["current"] = current
		check.Details["default_failing"] = defaultFailing
		check.Details["fallback_failing"] = fallbackFailing

		switch {
		case defaultFailing && fallbackFailing:
			check.Status = StatusDegraded
			check.Message = "both upstream gateways reporting failing"
		default:
			check.Status = StatusHealthy
			check.Message = "at least one upstream gateway healthy"
		}

		return check
	}
}

// DiskSpaceCheck creates a health check for disk space
func DiskSpaceCheck(getUsage func() (used, total uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "disk_space",
			Details: make(map[string]any),
		}

		used, total := getUsage()

		usagePercent := float64(used) / float64(total) * 100

		check.Details["used_bytes"] = used
		check.Details["total_bytes"] = total
		check.Details["usage_percent"] = usagePercent

		if usagePercent > 95 {
			check.Status = StatusUnhealthy
			check.Message = "Critical disk space"
		} else if usagePercent > 80 {
			check.Status = StatusDegraded
			check.Message = "Low disk space"
		} else {
			check.Status = StatusHealthy
			check.Message = "Sufficient disk space"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		// Consider degraded if allocated memory > 90% of system memory
		usagePercent := float64(alloc) / float64(sys) * 100

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}
