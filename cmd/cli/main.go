package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "mood":
		handleMood(args)
	case "flags":
		handleFlags(args)
	case "admin":
		handleAdmin(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: mindsync auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleMood(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: mindsync mood <log|list|history>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "log":
		logMood(args[1:])
	case "list":
		listMoods(args[1:])
	case "history":
		moodHistory(args[1:])
	default:
		fmt.Printf("unknown mood command: %s\n", subCmd)
	}
}

func handleFlags(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: mindsync flags <list|set>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listFlags(args[1:])
	case "set":
		setFlag(args[1:])
	default:
		fmt.Printf("unknown flags command: %s\n", subCmd)
	}
}

func handleAdmin(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: mindsync admin <users|audit>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "users":
		listUsers(args[1:])
	case "audit":
		listAuditLog(args[1:])
	default:
		fmt.Printf("unknown admin command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")
	role := fs.String("role", "patient", "requested role")

	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		fmt.Println("Error: name, email, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"fullName": *name,
		"email":    *email,
		"password": *password,
		"role":     *role,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s\n", *email)
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/auth/me", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Logged in as %v (%v, role: %v)\n", result["fullName"], result["email"], result["role"])
	} else {
		fmt.Println("Not logged in")
	}
}

// Mood commands
func logMood(args []string) {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	rating := fs.Int("rating", 0, "mood rating 1-10")
	tags := fs.String("tags", "", "comma-separated tags")
	note := fs.String("note", "", "optional note")

	fs.Parse(args)

	if *rating == 0 {
		fmt.Println("Error: rating is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"rating": *rating,
		"note":   *note,
	}
	if *tags != "" {
		payload["tags"] = strings.Split(*tags, ",")
	}

	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/moods", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Mood recorded: %v/10 on %v\n", result["rating"], result["entryDate"])
	} else {
		fmt.Printf("✗ Mood check-in failed: %v\n", result)
	}
}

func listMoods(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	days := fs.Int("days", 7, "trailing window in days")

	fs.Parse(args)

	req, _ := http.NewRequest("GET", fmt.Sprintf("%s/moods?days=%d", getAPIURL(), *days), nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var entries []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&entries)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tRATING\tTAGS\tNOTE")
	for _, e := range entries {
		tags := ""
		if raw, ok := e["tags"].([]interface{}); ok {
			parts := make([]string, 0, len(raw))
			for _, t := range raw {
				parts = append(parts, fmt.Sprint(t))
			}
			tags = strings.Join(parts, ",")
		}
		fmt.Fprintf(w, "%v\t%v\t%s\t%v\n", e["entryDate"], e["rating"], tags, e["note"])
	}
	w.Flush()
}

func moodHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	days := fs.Int("days", 7, "trailing window in days")

	fs.Parse(args)

	req, _ := http.NewRequest("GET", fmt.Sprintf("%s/moods/history?days=%d", getAPIURL(), *days), nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var buckets []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&buckets)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tAVG")
	for _, b := range buckets {
		avg := "-"
		if b["avg"] != nil {
			avg = fmt.Sprint(b["avg"])
		}
		fmt.Fprintf(w, "%v\t%s\n", b["date"], avg)
	}
	w.Flush()
}

// Feature flag commands
func listFlags(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/flags", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var flags []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&flags)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tENABLED\tDESCRIPTION")
	for _, f := range flags {
		fmt.Fprintf(w, "%v\t%v\t%v\n", f["key"], f["enabled"], f["description"])
	}
	w.Flush()
}

func setFlag(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	key := fs.String("key", "", "flag key")
	enabled := fs.Bool("enabled", false, "desired state")

	fs.Parse(args)

	if *key == "" {
		fmt.Println("Error: key is required")
		fs.PrintDefaults()
		return
	}

	data, _ := json.Marshal(map[string]bool{"enabled": *enabled})
	req, _ := http.NewRequest("PATCH", getAPIURL()+"/flags/"+*key, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Flag %v set to %v\n", result["key"], result["enabled"])
	} else {
		fmt.Printf("✗ Flag update failed: %v\n", result)
	}
}

// Admin commands
func listUsers(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/admin/users", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var users []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&users)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", u["id"], u["fullName"], u["email"], u["role"], u["isActive"])
	}
	w.Flush()
}

func listAuditLog(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	limit := fs.Int("limit", 50, "max entries")

	fs.Parse(args)

	req, _ := http.NewRequest("GET", fmt.Sprintf("%s/admin/logs?limit=%d", getAPIURL(), *limit), nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var entries []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&entries)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tADMIN\tTARGET")
	for _, e := range entries {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", e["createdAt"], e["action"], e["adminEmail"], e["targetEmail"])
	}
	w.Flush()
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("MINDSYNC_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.mindsync/token"
}

func saveToken(token string) error {
	os.MkdirAll(os.Getenv("HOME")+"/.mindsync", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`MindSync CLI

Usage:
  mindsync <command> [options]

Commands:
  auth    User authentication (register, login, logout, who)
  mood    Mood check-ins (log, list, history)
  flags   Feature flags (list, set) - set requires admin access
  admin   Admin operations (users, audit) - admin access required
  help    Show this help message

Environment Variables:
  MINDSYNC_API    API endpoint (default: http://localhost:8080/api)

Examples:
  mindsync auth register -name "Jane Doe" -email jane@example.com -password secret123
  mindsync auth login -email jane@example.com -password secret123
  mindsync mood log -rating 7 -tags calm,focused -note "good day"
  mindsync mood history -days 30
  mindsync flags list
`)
}
