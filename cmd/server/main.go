package main

// @title           CueLABS API
// @version         1.0
// @description     Developer bounty platform: claim bounties, submit work, earn Cue points
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token
func main() {
	Execute()
}
