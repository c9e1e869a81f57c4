package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithMessage returns a copy carrying a more specific message, keeping the code
func (e Errno) WithMessage(msg string) Errno {
	e.Message = msg
	return e
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
	ErrTenantHeader     = Errno{Code: 10005, Message: "Missing or invalid X-Tenant-ID header"}
)

// Business Errors (20000+)
var (
	// 订单 201xx
	ErrOrderNotFound     = Errno{Code: 20101, Message: "Order not found"}
	ErrStaffBusy         = Errno{Code: 20102, Message: "Staff already holds a pending order"}
	ErrNoWindowsSelected = Errno{Code: 20103, Message: "No windows selected for dispatch"}
	ErrOrderNotPending   = Errno{Code: 20104, Message: "Order is not in pending state"}
	ErrOrderNotPaused    = Errno{Code: 20105, Message: "Order is not in paused state"}
	ErrOrderCompleted    = Errno{Code: 20106, Message: "Order already completed"}
	ErrUnderDelivery     = Errno{Code: 20107, Message: "Total consumed is below the order amount, confirmation required"}
	ErrWindowNotInOrder  = Errno{Code: 20108, Message: "Window does not belong to this order"}

	// 窗口/机器 202xx
	ErrWindowNotFound   = Errno{Code: 20201, Message: "Window not found"}
	ErrMachineNotFound  = Errno{Code: 20202, Message: "Machine not found"}
	ErrNegativeBalance  = Errno{Code: 20203, Message: "Window balance cannot be negative"}
	ErrWindowCapReached = Errno{Code: 20204, Message: "Staff already holds the maximum number of windows"}
	ErrWindowAssigned   = Errno{Code: 20205, Message: "Window is currently assigned to a staff"}
	ErrWindowNotOwned   = Errno{Code: 20206, Message: "Window belongs to another staff"}

	// 转让 203xx
	ErrTransferNotFound  = Errno{Code: 20301, Message: "Transfer request not found"}
	ErrTransferResolved  = Errno{Code: 20302, Message: "Transfer request already resolved"}
	ErrNotFriends        = Errno{Code: 20303, Message: "Tenants are not friends"}
	ErrNoEligibleWindows = Errno{Code: 20304, Message: "Machine has no unassigned windows to transfer"}
	ErrTransferBusy      = Errno{Code: 20305, Message: "Transfer request is being processed"}

	// 台账/人员 204xx
	ErrStaffNotFound      = Errno{Code: 20401, Message: "Staff not found"}
	ErrInvalidLedgerEntry = Errno{Code: 20402, Message: "Ledger amount and cost must be non-negative"}
)
