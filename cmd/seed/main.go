package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/pong-stats-service/internal/domain"
	"github.com/pong-stats-service/internal/kafka"
)

var playerPrefixes = []string{
	"Phoenix", "Shadow", "Thunder", "Storm", "Blaze", "Ninja", "Dragon", "Wolf", "Hawk", "Viper",
	"Ghost", "Titan", "Frost", "Cyber", "Nova", "Raven", "Omega", "Alpha", "Delta", "Sigma",
	"Ace", "Bolt", "Crash", "Dash", "Edge", "Flash", "Glitch", "Haze", "Ion", "Jade",
	"Knight", "Luna", "Mystic", "Neon", "Orion", "Pulse", "Quantum", "Rebel", "Spark", "Turbo",
}

func getPlayerName(idx int) string {
	prefixIdx := idx % len(playerPrefixes)
	suffix := idx/len(playerPrefixes) + 1
	return fmt.Sprintf("%s%d", playerPrefixes[prefixIdx], suffix)
}

// pickOpponent returns a random index distinct from playerIdx. Callers must
// guarantee total >= 2.
func pickOpponent(playerIdx, total int) int {
	opponentIdx := rand.Intn(total)
	for opponentIdx == playerIdx {
		opponentIdx = rand.Intn(total)
	}
	return opponentIdx
}

func randomDuration() string {
	minutes := rand.Intn(20) + 1
	seconds := rand.Intn(60)
	return fmt.Sprintf("00:%02d:%02d", minutes, seconds)
}

func randomMatch(opponentID, opponentName string) domain.MatchSubmission {
	playerScore := rand.Intn(11)
	opponentScore := rand.Intn(11)

	result := domain.ResultDraw
	if playerScore > opponentScore {
		result = domain.ResultWin
	} else if playerScore < opponentScore {
		result = domain.ResultLoss
	}

	return domain.MatchSubmission{
		OpponentID:    opponentID,
		OpponentName:  opponentName,
		PlayerScore:   &playerScore,
		OpponentScore: &opponentScore,
		Duration:      randomDuration(),
		Result:        result,
	}
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "match-events", "Kafka topic")
	totalPlayers := flag.Int("players", 100, "Total number of players to seed")
	matchesPerPlayer := flag.Int("matches", 10, "Initial matches per player")
	updatesPerSecond := flag.Int("rate", 50, "Match events per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	initialOnly := flag.Bool("initial-only", false, "Only seed initial matches, no continuous stream")
	flag.Parse()

	if *totalPlayers < 2 {
		log.Fatal("at least 2 players are required to pair matches")
	}

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("  🏓 Match Event Seeder")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Brokers:          %s\n", *brokers)
	fmt.Printf("  Topic:            %s\n", *topic)
	fmt.Printf("  Total Players:    %d\n", *totalPlayers)
	fmt.Printf("  Matches/Player:   %d\n", *matchesPerPlayer)
	fmt.Printf("  Events/sec:       %d\n", *updatesPerSecond)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	// Create producer
	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	// Stable player identities for the whole run
	playerIDs := make([]string, *totalPlayers)
	for i := range playerIDs {
		playerIDs[i] = uuid.NewString()
	}

	// Send message helper
	sendEvent := func(event kafka.MatchEvent) {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(event.PlayerID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
			return
		}
	}

	randomEvent := func() kafka.MatchEvent {
		playerIdx := rand.Intn(*totalPlayers)
		opponentIdx := pickOpponent(playerIdx, *totalPlayers)

		return kafka.MatchEvent{
			PlayerID:   playerIDs[playerIdx],
			PlayerName: getPlayerName(playerIdx),
			Match:      randomMatch(playerIDs[opponentIdx], getPlayerName(opponentIdx)),
		}
	}

	// Seed the initial ledger
	totalMatches := *totalPlayers * *matchesPerPlayer
	fmt.Printf("Seeding %d initial matches...\n", totalMatches)
	for i := 0; i < totalMatches; i++ {
		sendEvent(randomEvent())

		if (i+1)%100 == 0 || i+1 == totalMatches {
			progress := float64(i+1) / float64(totalMatches) * 100
			fmt.Printf("\r  Progress: %d/%d matches (%.1f%%)", i+1, totalMatches, progress)
		}
	}
	fmt.Printf("\n✓ Seeded %d matches\n\n", totalMatches)

	if *initialOnly {
		fmt.Println("Initial-only mode: Exiting after seeding matches")
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\n✓ Completed. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
		return
	}

	// Start continuous stream
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Starting continuous match stream (%d/sec)\n", *updatesPerSecond)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	interval := time.Second / time.Duration(*updatesPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	var eventCount int64

	for {
		select {
		case <-sigChan:
			fmt.Println("\n\nShutting down...")
			close(done)
			producer.AsyncClose()
			wg.Wait()
			fmt.Printf("\n✓ Completed. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				fmt.Println("\n\nDuration reached, shutting down...")
				close(done)
				producer.AsyncClose()
				wg.Wait()
				fmt.Printf("\n✓ Completed. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
				return
			}

			sendEvent(randomEvent())
			atomic.AddInt64(&eventCount, 1)

		case <-statsTicker.C:
			events := atomic.LoadInt64(&eventCount)
			success := atomic.LoadInt64(&successCount)
			errors := atomic.LoadInt64(&errorCount)
			fmt.Printf("[%s] Events: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				events,
				success,
				errors,
			)
		}
	}
}
