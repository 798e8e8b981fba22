package templates

import (
	"fmt"
	"html"
)

// RenderSLAAlertEmail generates the HTML body for an overdue-case alert sent
// to the assigned investigator.
func RenderSLAAlertEmail(caseNumber, caseTitle, status string, overdueHours float64) string {
	safeTitle := html.EscapeString(caseTitle)
	safeStatus := html.EscapeString(status)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>Case %s is overdue</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f5f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: #b91c1c; padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 32px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .badge { display: inline-block; background: #fee2e2; color: #b91c1c; padding: 4px 10px; border-radius: 4px; font-weight: 600; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>SLA breach: %s</h1>
    </div>
    <div class="content">
      <p>The case <strong>%s</strong> (&ldquo;%s&rdquo;) has been in status
      <span class="badge">%s</span> past its allowed dwell time.</p>
      <p>It is currently overdue by <strong>%.1f hours</strong>. Please review
      the case and record your next action.</p>
    </div>
    <div class="footer">
      You are receiving this because the case is assigned to you.
    </div>
  </div>
</body>
</html>`, caseNumber, caseNumber, caseNumber, safeTitle, safeStatus, overdueHours)
}
