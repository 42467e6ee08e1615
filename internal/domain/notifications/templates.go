package notifications

import (
	"bytes"
	"fmt"
	"html/template"
)

// LeaveMailVars feeds the leave decision mail templates.
type LeaveMailVars struct {
	Name        string
	LeaveType   string
	Date        string
	ApprovedBy  string
	Remarks     string
	CompanyName string
}

var leaveApprovedTmpl = template.Must(template.New("leave_approved").Parse(`
<div style="font-family:Arial,sans-serif;line-height:1.6">
  <h2 style="margin:0 0 10px;color:#1a7f37">Leave Approved</h2>
  <p>Dear <b>{{.Name}}</b>,</p>
  <p>Your leave request has been <b style="color:#1a7f37">APPROVED</b>.</p>
  <table cellpadding="6" style="border-collapse:collapse">
    <tr><td><b>Leave Type</b></td><td>{{.LeaveType}}</td></tr>
    <tr><td><b>Date</b></td><td>{{.Date}}</td></tr>
    <tr><td><b>Approved By</b></td><td>{{.ApprovedBy}}</td></tr>
    <tr><td><b>Remarks</b></td><td>{{.Remarks}}</td></tr>
  </table>
  <p style="margin-top:14px">Regards,<br/>{{.CompanyName}}</p>
</div>`))

var leaveRejectedTmpl = template.Must(template.New("leave_rejected").Parse(`
<div style="font-family:Arial,sans-serif;line-height:1.6">
  <h2 style="margin:0 0 10px;color:#b42318">Leave Rejected</h2>
  <p>Dear <b>{{.Name}}</b>,</p>
  <p>Your leave request has been <b style="color:#b42318">REJECTED</b>.</p>
  <table cellpadding="6" style="border-collapse:collapse">
    <tr><td><b>Leave Type</b></td><td>{{.LeaveType}}</td></tr>
    <tr><td><b>Date</b></td><td>{{.Date}}</td></tr>
    <tr><td><b>Reviewed By</b></td><td>{{.ApprovedBy}}</td></tr>
    <tr><td><b>Remarks</b></td><td>{{.Remarks}}</td></tr>
  </table>
  <p style="margin-top:14px">Regards,<br/>{{.CompanyName}}</p>
</div>`))

// RenderLeaveMail produces the subject and HTML body for a leave
// decision mail.
func RenderLeaveMail(approved bool, vars LeaveMailVars) (subject, body string, err error) {
	tmpl := leaveRejectedTmpl
	verdict := "Rejected"
	if approved {
		tmpl = leaveApprovedTmpl
		verdict = "Approved"
	}
	subject = fmt.Sprintf("Leave %s - %s (%s)", verdict, vars.LeaveType, vars.Date)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
