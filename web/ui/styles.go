package ui

// GetStyles returns the CSS styles for the dashboard
func GetStyles() string {
	return `
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            display: flex;
            flex-direction: column;
            margin: 0;
        }
        body > nav {
            flex-shrink: 0;
        }
        body > .container {
            flex: 1 0 auto;
        }
        .main-container {
            background: white;
            border-radius: 15px;
            box-shadow: 0 10px 40px rgba(0,0,0,0.1);
            padding: 2rem;
            margin: 2rem 0;
        }
        .card {
            border: none;
            border-radius: 10px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.08);
        }
        .card-header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            border-radius: 10px 10px 0 0 !important;
            font-weight: 600;
        }
        .table {
            border-radius: 8px;
            overflow: hidden;
        }
        .table thead {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
        }
        .table tbody tr:hover {
            background-color: #f8f9fa;
        }
        .badge {
            padding: 0.4em 0.8em;
            font-weight: 500;
        }
        code {
            background-color: #f4f4f4;
            padding: 0.2em 0.4em;
            border-radius: 4px;
            font-size: 0.9em;
        }
        .logpane {
            background-color: #1e1e2e;
            color: #e0e0e0;
            padding: 1rem;
            border-radius: 6px;
            max-height: 480px;
            overflow-y: auto;
            white-space: pre-wrap;
            font-size: 0.85em;
        }
        .expiration {
            font-family: monospace;
        }
        .expirationCountdown {
            margin-left: 0.5rem;
            color: #764ba2;
            font-weight: 600;
        }
        .navbar-brand {
            font-weight: bold;
        }
        .config-table td {
            vertical-align: middle;
        }
        .config-value {
            font-family: monospace;
            background-color: #f8f9fa;
            padding: 0.25rem 0.5rem;
            border-radius: 4px;
        }
    `
}
